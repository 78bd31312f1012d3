// cmd/main.go
package main

import (
	"card-bank-api/app"
)

// @title           Card Bank API
// @version         1.0
// @description     Card banking API: accounts, cards and transfers between a user's own cards.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
