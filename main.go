// Command docsentry inspects office documents, mail containers and PDFs for
// embedded active content and lets an analyst review the findings.
package main

import (
	"os"

	"docsentry/app"
)

func main() {
	os.Exit(app.Run())
}
