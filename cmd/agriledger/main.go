package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"agriledger/addressing"
	"agriledger/docstore"
	"agriledger/grpcledger"
	"agriledger/keys"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "address":
		return cmdAddress(args[1:], out, errOut)
	case "doc":
		return cmdDoc(args[1:], out, errOut)
	case "submit":
		return cmdSubmit(args[1:], out, errOut)
	case "state":
		return cmdState(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "agriledger: supply-chain ledger CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  agriledger key new")
	fmt.Fprintln(w, "  agriledger address <kind> <id> [company-id]")
	fmt.Fprintln(w, "  agriledger doc hash <file>")
	fmt.Fprintln(w, "  agriledger doc put --store <dir> <file>")
	fmt.Fprintln(w, "  agriledger doc get --store <dir> <cid>")
	fmt.Fprintln(w, "  agriledger submit --target <host:port> --key <privhex> [--sign] <payload.json>")
	fmt.Fprintln(w, "  agriledger state --target <host:port> <address>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Kinds: system-admin, company-admin, operator, authority, task-type,")
	fmt.Fprintln(w, "       product-type, event-parameter-type, event-type, property-type,")
	fmt.Fprintln(w, "       company, field (needs company-id), batch, company-id")
}

func cmdKey(args []string, out, errOut io.Writer) int {
	if len(args) != 1 || args[0] != "new" {
		fmt.Fprintln(errOut, "usage: agriledger key new")
		return 2
	}
	priv, err := keys.GeneratePrivateKey()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "private: %s\n", keys.PrivateKeyHex(priv))
	fmt.Fprintf(out, "public:  %s\n", keys.PublicKeyHex(priv))
	return 0
}

func cmdAddress(args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "usage: agriledger address <kind> <id> [company-id]")
		return 2
	}
	kind, id := args[0], args[1]

	var address string
	switch kind {
	case "system-admin":
		address = addressing.SystemAdminAddress()
	case "company-admin":
		address = addressing.CompanyAdminAddress(id)
	case "operator":
		address = addressing.OperatorAddress(id)
	case "authority":
		address = addressing.CertificationAuthorityAddress(id)
	case "task-type":
		address = addressing.TaskTypeAddress(id)
	case "product-type":
		address = addressing.ProductTypeAddress(id)
	case "event-parameter-type":
		address = addressing.EventParameterTypeAddress(id)
	case "event-type":
		address = addressing.EventTypeAddress(id)
	case "property-type":
		address = addressing.PropertyTypeAddress(id)
	case "company":
		address = addressing.CompanyAddress(id)
	case "field":
		if len(args) != 3 {
			fmt.Fprintln(errOut, "field addresses need a company id")
			return 2
		}
		address = addressing.FieldAddress(id, args[2])
	case "batch":
		address = addressing.BatchAddress(id)
	case "company-id":
		address = addressing.CompanyID(id)
	default:
		fmt.Fprintf(errOut, "unknown kind: %s\n", kind)
		return 2
	}
	fmt.Fprintln(out, address)
	return 0
}

func cmdDoc(args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: agriledger doc <hash|put|get> ...")
		return 2
	}
	switch args[0] {
	case "hash":
		if len(args) != 2 {
			fmt.Fprintln(errOut, "usage: agriledger doc hash <file>")
			return 2
		}
		b, err := os.ReadFile(args[1])
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintln(out, docstore.CertificateHash(b))
		return 0
	case "put":
		fs := flag.NewFlagSet("doc put", flag.ExitOnError)
		store := fs.String("store", "", "document store directory")
		_ = fs.Parse(args[1:])
		if *store == "" || fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: agriledger doc put --store <dir> <file>")
			return 2
		}
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		st, err := docstore.NewLocalFS(*store)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		id, err := st.Put(b)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintf(out, "cid:  %s\n", id)
		fmt.Fprintf(out, "hash: %s\n", docstore.CertificateHash(b))
		return 0
	case "get":
		fs := flag.NewFlagSet("doc get", flag.ExitOnError)
		store := fs.String("store", "", "document store directory")
		_ = fs.Parse(args[1:])
		if *store == "" || fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: agriledger doc get --store <dir> <cid>")
			return 2
		}
		st, err := docstore.NewLocalFS(*store)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		b, err := getDoc(st, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		_, _ = out.Write(b)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown doc command: %s\n", args[0])
		return 2
	}
}

func getDoc(st docstore.Store, s string) ([]byte, error) {
	id, err := cid.Decode(s)
	if err != nil || !id.Defined() {
		return nil, docstore.ErrInvalidCID
	}
	return st.Get(id)
}

func cmdSubmit(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	target := fs.String("target", "127.0.0.1:7878", "ledger daemon address")
	key := fs.String("key", "", "signer private key hex")
	sign := fs.Bool("sign", false, "attach a payload signature")
	timeout := fs.Duration("timeout", 10*time.Second, "per-RPC timeout")
	_ = fs.Parse(args)
	if *key == "" || fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: agriledger submit --target <host:port> --key <privhex> [--sign] <payload.json>")
		return 2
	}

	payload, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	priv, err := keys.ParsePrivateKeyHex(strings.TrimSpace(*key))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	tx := grpcledger.Transaction{
		Signer:  keys.PublicKeyHex(priv),
		Payload: payload,
	}
	if *sign {
		tx.Signature = keys.Sign(priv, payload)
	}

	client, err := grpcledger.Dial(*target, grpcledger.DialOptions{Timeout: *timeout})
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer client.Close()
	client.Timeout = *timeout

	action, err := client.Apply(context.Background(), tx)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "applied: %s\n", action)
	return 0
}

func cmdState(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	target := fs.String("target", "127.0.0.1:7878", "ledger daemon address")
	timeout := fs.Duration("timeout", 10*time.Second, "per-RPC timeout")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: agriledger state --target <host:port> <address>")
		return 2
	}
	address := fs.Arg(0)
	if !addressing.IsValidAddress(address) {
		fmt.Fprintln(errOut, "invalid state address")
		return 2
	}

	client, err := grpcledger.Dial(*target, grpcledger.DialOptions{Timeout: *timeout})
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer client.Close()
	client.Timeout = *timeout

	b, err := client.GetState(context.Background(), address)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if len(b) == 0 {
		fmt.Fprintln(errOut, "no record at address")
		return 1
	}
	_, _ = out.Write(b)
	fmt.Fprintln(out)
	return 0
}
