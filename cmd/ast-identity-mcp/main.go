package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/draftline/ast-identity/internal/config"
	"github.com/draftline/ast-identity/internal/session"
	"github.com/draftline/ast-identity/internal/store"
	"github.com/draftline/ast-identity/internal/tools"
	"github.com/draftline/ast-identity/internal/watcher"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Println("ast-identity-mcp", version)
		os.Exit(0)
	}

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("getwd err=%v", err)
	}
	cfg := config.Load(wd)

	var st *store.Store
	if cfg.StorePath != "" {
		st, err = store.OpenPath(cfg.StorePath)
	} else {
		st, err = store.Open("workspace")
	}
	if err != nil {
		log.Fatalf("store open err=%v", err)
	}

	sessions := session.NewManager(st, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	if err := sessions.RestoreAll(ctx); err != nil {
		log.Fatalf("restore sessions err=%v", err)
	}
	go watcher.New(sessions).Run(ctx)

	srv := tools.NewServer(st, sessions)
	runErr := srv.MCPServer().Run(ctx, &mcp.StdioTransport{})

	cancel()
	if err := sessions.CloseAll(); err != nil {
		log.Printf("close sessions err=%v", err)
	}
	st.Close()
	if runErr != nil {
		log.Fatalf("server err=%v", runErr)
	}
}
