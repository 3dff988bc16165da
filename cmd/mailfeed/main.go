package main

import "github.com/talkport/mailfeed/internal/app"

func main() {
	app.Execute()
}
