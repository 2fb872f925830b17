package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/orchestrated-app/hub/internal/config"
	"github.com/orchestrated-app/hub/internal/home"
	"github.com/orchestrated-app/hub/internal/tui"
	"github.com/orchestrated-app/hub/internal/tui/client"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	addrFlag := flag.String("addr", "", "daemon address (overrides config)")
	flag.Parse()

	profile := home.Resolve(*profileFlag)
	if err := home.ValidateProfile(profile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	addr := *addrFlag
	if addr == "" {
		cfg, err := config.Load(home.ConfigPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		addr = "http://" + cfg.HTTP.ListenAddr
	}

	c := client.New(addr)

	// Probe daemon health; auto-start if needed.
	if !probeDaemon(c) {
		fmt.Fprintf(os.Stderr, "daemon not running for profile %q, starting...\n", profile)
		if err := startDaemon(profile); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start daemon: %v\n", err)
			os.Exit(1)
		}
		if !waitForDaemon(c, 10*time.Second) {
			fmt.Fprintf(os.Stderr, "daemon did not become ready\n")
			os.Exit(1)
		}
	}

	app := tui.NewApp(c, profile)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func probeDaemon(c *client.Client) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.Health(ctx)
}

func startDaemon(profile string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	hubd := filepath.Join(filepath.Dir(executable), "hubd")

	if _, err := os.Stat(hubd); err != nil {
		hubd = "hubd"
	}

	cmd := exec.Command(hubd, "--profile", profile)
	// Inherit stderr so daemon startup errors are visible.
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

func waitForDaemon(c *client.Client, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if probeDaemon(c) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
