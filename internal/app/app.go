package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talkport/mailfeed/internal/ingest"
	"github.com/talkport/mailfeed/internal/provider"
	"github.com/talkport/mailfeed/internal/registry"
	"github.com/talkport/mailfeed/internal/server"
	"github.com/talkport/mailfeed/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mailfeed",
	Short: "TalkPort mail feed backend",
	Long:  "Links Google mail accounts via OAuth and serves a normalized feed of their recent messages",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long:  "Serves the OAuth linking flow and the connected-accounts API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		clientID := viper.GetString("google.client_id")
		clientSecret := viper.GetString("google.client_secret")
		redirectURL := viper.GetString("google.redirect_url")
		if clientID == "" || clientSecret == "" {
			return fmt.Errorf("google.client_id and google.client_secret must be configured")
		}
		if redirectURL == "" {
			return fmt.Errorf("google.redirect_url not configured")
		}

		googleAPI := provider.NewGoogleProvider(clientID, clientSecret, redirectURL,
			viper.GetString("google.endpoint"))

		// Optional persistent user records; the in-memory registry is
		// always authoritative for the running process.
		var users store.UserStore
		if dbURL := viper.GetString("database.url"); dbURL != "" {
			pg, err := store.NewPostgres(ctx, dbURL)
			if err != nil {
				return fmt.Errorf("failed to initialize user store: %w", err)
			}
			defer pg.Close()
			users = pg
			log.Println("persistent user store enabled")
		}

		reg := registry.New()
		fetcher := ingest.NewFetcher(googleAPI,
			viper.GetInt64("fetch.window"), viper.GetInt("fetch.workers"))
		svc := ingest.NewService(googleAPI, fetcher, reg, users)

		srv := server.New(svc, googleAPI, server.Config{
			FrontendOrigin: viper.GetString("frontend.origin"),
			DashboardURL:   viper.GetString("frontend.dashboard_url"),
		})

		addr := fmt.Sprintf(":%s", viper.GetString("server.port"))
		httpSrv := &http.Server{Addr: addr, Handler: srv.Router()}

		errChan := make(chan error, 1)
		go func() {
			log.Printf("mailfeed listening on %s", addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
				return
			}
			errChan <- nil
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigChan:
			fmt.Println("\nShutting down gracefully...")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			return nil
		case err := <-errChan:
			return err
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Flags
	rootCmd.PersistentFlags().String("server.port", "5000", "HTTP listen port")
	rootCmd.PersistentFlags().String("database.url", "", "Postgres connection URL for the user store (empty disables persistence)")
	rootCmd.PersistentFlags().String("google.redirect_url", "", "OAuth redirect URL registered with Google")
	rootCmd.PersistentFlags().String("google.endpoint", "", "Override the Google API base URL (development only)")

	// Bind flags to viper
	viper.BindPFlag("server.port", rootCmd.PersistentFlags().Lookup("server.port"))
	viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database.url"))
	viper.BindPFlag("google.redirect_url", rootCmd.PersistentFlags().Lookup("google.redirect_url"))
	viper.BindPFlag("google.endpoint", rootCmd.PersistentFlags().Lookup("google.endpoint"))

	viper.SetDefault("fetch.window", ingest.DefaultWindow)
	viper.SetDefault("fetch.workers", ingest.DefaultWorkers)
	viper.SetDefault("frontend.origin", "http://localhost:3000")
	viper.SetDefault("frontend.dashboard_url", "http://localhost:3000/dashboard")

	rootCmd.AddCommand(serveCmd)
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
