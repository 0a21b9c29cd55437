package main

import (
	"marketplace-management-api/app"
)

func main() {
	app.Run()
}
