package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"agriledger/docstore"
	"agriledger/grpcledger"
	"agriledger/state"
)

func main() {
	fs := flag.NewFlagSet("agriledgerd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7878", "listen address")
	docs := fs.String("docs", "", "serve a document store from this directory on the same listener")
	requireSigs := fs.Bool("require-signatures", false, "verify transaction signatures before dispatch")

	_ = fs.Parse(os.Args[1:])

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcledger.RegisterLedgerServer(s, &grpcledger.Server{
		Ledger:            state.NewMemLedger(),
		RequireSignatures: *requireSigs,
	})

	if *docs != "" {
		store, err := docstore.NewLocalFS(*docs)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		grpcledger.RegisterDocsServer(s, &grpcledger.DocsServer{Store: store})
	}

	fmt.Fprintf(os.Stderr, "agriledgerd listening on %s\n", lis.Addr().String())
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
