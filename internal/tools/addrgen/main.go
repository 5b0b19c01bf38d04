package main

import (
	"fmt"
	"os"

	"agriledger/addressing"
)

// addrgen prints the full address table for an id, one line per entity kind.
// Handy when inspecting raw ledger state.
func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintln(os.Stderr, "usage: addrgen <id> [company-id]")
		os.Exit(2)
	}
	id := os.Args[1]

	fmt.Printf("system-admin          %s\n", addressing.SystemAdminAddress())
	fmt.Printf("company-admin         %s\n", addressing.CompanyAdminAddress(id))
	fmt.Printf("operator              %s\n", addressing.OperatorAddress(id))
	fmt.Printf("authority             %s\n", addressing.CertificationAuthorityAddress(id))
	fmt.Printf("task-type             %s\n", addressing.TaskTypeAddress(id))
	fmt.Printf("product-type          %s\n", addressing.ProductTypeAddress(id))
	fmt.Printf("event-parameter-type  %s\n", addressing.EventParameterTypeAddress(id))
	fmt.Printf("event-type            %s\n", addressing.EventTypeAddress(id))
	fmt.Printf("property-type         %s\n", addressing.PropertyTypeAddress(id))
	fmt.Printf("company               %s\n", addressing.CompanyAddress(id))
	fmt.Printf("batch                 %s\n", addressing.BatchAddress(id))
	if len(os.Args) == 3 {
		fmt.Printf("field                 %s\n", addressing.FieldAddress(id, os.Args[2]))
	}
}
