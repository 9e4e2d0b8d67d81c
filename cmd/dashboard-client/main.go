package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/web3-dashboard-backend/api/clients"
	"github.com/ruteri/web3-dashboard-backend/cryptoutils"
	"github.com/urfave/cli/v2"
)

var flagServer *cli.StringFlag = &cli.StringFlag{
	Name:    "server",
	Value:   "http://127.0.0.1:8080",
	Usage:   "Dashboard server base URL",
	EnvVars: []string{"DASHBOARD_SERVER"},
}
var flagKeyFile *cli.StringFlag = &cli.StringFlag{
	Name:  "key-file",
	Value: "wallet.key",
	Usage: "Path to the hex encoded wallet private key",
}
var flagToken *cli.StringFlag = &cli.StringFlag{
	Name:    "token",
	Usage:   "Session token to use instead of logging in with the wallet key",
	EnvVars: []string{"DASHBOARD_TOKEN"},
}
var flagTimeout *cli.DurationFlag = &cli.DurationFlag{
	Name:  "timeout",
	Value: 60 * time.Second,
	Usage: "Request timeout",
}

// authenticatedClient returns a client holding a session token, logging in
// with the wallet key unless a token was given.
func authenticatedClient(cCtx *cli.Context) (*clients.DashboardClient, error) {
	client := clients.NewDashboardClient(cCtx.String(flagServer.Name), cCtx.Duration(flagTimeout.Name))

	if token := cCtx.String(flagToken.Name); token != "" {
		client.SetToken(token)
		return client, nil
	}

	key, err := crypto.LoadECDSA(cCtx.String(flagKeyFile.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet key: %w", err)
	}

	if _, err := client.Login(cCtx.Context, key); err != nil {
		return nil, err
	}
	return client, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	authFlags := []cli.Flag{flagServer, flagKeyFile, flagToken, flagTimeout}

	app := &cli.App{
		Name:  "dashboard client",
		Usage: "Interact with the dashboard API using a wallet key",
		Commands: []*cli.Command{
			{
				Name:  "generate-key",
				Usage: "Create a new wallet key file",
				Flags: []cli.Flag{flagKeyFile},
				Action: func(cCtx *cli.Context) error {
					path := cCtx.String(flagKeyFile.Name)
					if _, err := os.Stat(path); err == nil {
						return fmt.Errorf("refusing to overwrite existing key file %s", path)
					}

					key, err := crypto.GenerateKey()
					if err != nil {
						return fmt.Errorf("failed to generate key: %w", err)
					}
					if err := crypto.SaveECDSA(path, key); err != nil {
						return err
					}

					fmt.Println(cryptoutils.AddressOf(key).String())
					return nil
				},
			},
			{
				Name:  "address",
				Usage: "Print the wallet address of the key file",
				Flags: []cli.Flag{flagKeyFile},
				Action: func(cCtx *cli.Context) error {
					key, err := crypto.LoadECDSA(cCtx.String(flagKeyFile.Name))
					if err != nil {
						return err
					}
					fmt.Println(cryptoutils.AddressOf(key).String())
					return nil
				},
			},
			{
				Name:  "login",
				Usage: "Sign in with the wallet key and print the session token",
				Flags: []cli.Flag{flagServer, flagKeyFile, flagTimeout},
				Action: func(cCtx *cli.Context) error {
					key, err := crypto.LoadECDSA(cCtx.String(flagKeyFile.Name))
					if err != nil {
						return fmt.Errorf("failed to load wallet key: %w", err)
					}

					client := clients.NewDashboardClient(cCtx.String(flagServer.Name), cCtx.Duration(flagTimeout.Name))
					resp, err := client.Login(cCtx.Context, key)
					if err != nil {
						return err
					}
					return printJSON(resp)
				},
			},
			{
				Name:  "ls",
				Usage: "List your files",
				Flags: authFlags,
				Action: func(cCtx *cli.Context) error {
					client, err := authenticatedClient(cCtx)
					if err != nil {
						return err
					}
					files, err := client.ListFiles(cCtx.Context)
					if err != nil {
						return err
					}
					return printJSON(files)
				},
			},
			{
				Name:      "upload",
				Usage:     "Upload a file",
				ArgsUsage: "<path>",
				Flags:     authFlags,
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return errors.New("expected exactly one file path")
					}
					path := cCtx.Args().First()

					f, err := os.Open(path)
					if err != nil {
						return err
					}
					defer f.Close()

					client, err := authenticatedClient(cCtx)
					if err != nil {
						return err
					}
					file, err := client.Upload(cCtx.Context, filepath.Base(path), f)
					if err != nil {
						return err
					}
					return printJSON(file)
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete one of your files",
				ArgsUsage: "<file id>",
				Flags:     authFlags,
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return errors.New("expected exactly one file id")
					}

					client, err := authenticatedClient(cCtx)
					if err != nil {
						return err
					}
					return client.Delete(cCtx.Context, cCtx.Args().First())
				},
			},
			{
				Name:  "admin-files",
				Usage: "List all files with their owners (admin only)",
				Flags: authFlags,
				Action: func(cCtx *cli.Context) error {
					client, err := authenticatedClient(cCtx)
					if err != nil {
						return err
					}
					files, err := client.AdminFiles(cCtx.Context)
					if err != nil {
						return err
					}
					return printJSON(files)
				},
			},
			{
				Name:  "admin-audit",
				Usage: "Show the most recent audit records (admin only)",
				Flags: authFlags,
				Action: func(cCtx *cli.Context) error {
					client, err := authenticatedClient(cCtx)
					if err != nil {
						return err
					}
					logs, err := client.AdminAudit(cCtx.Context)
					if err != nil {
						return err
					}
					return printJSON(logs)
				},
			},
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
