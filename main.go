// The main package for the contact-finder executable.
package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/JakeFAU/contact-finder/cmd"
)

func main() {
	cmd.Execute()
}
