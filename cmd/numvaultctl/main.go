package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danmuck/numvault/internal/client"
	"github.com/danmuck/numvault/internal/logging"
	"github.com/danmuck/numvault/internal/rpc"
)

func main() {
	logging.ConfigureRuntime()

	var (
		serverAddr = flag.String("server", "127.0.0.1:9999", "numvaultd UDP address")
		id         = flag.Uint64("id", 1, "request correlation id")
		timeout    = flag.Duration("timeout", 3*time.Second, "per-request timeout")
		demo       = flag.Bool("demo", false, "run the demo request sequence")
	)
	flag.Usage = usage
	flag.Parse()

	c, err := client.Dial(*serverAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "numvaultctl: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	if *demo {
		if err := runDemo(c, *timeout); err != nil {
			fmt.Fprintf(os.Stderr, "numvaultctl: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	method, err := rpc.ParseMethod(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "numvaultctl: %v\n", err)
		os.Exit(2)
	}

	if err := send(c, *timeout, method, flag.Args()[1:], *id); err != nil {
		fmt.Fprintf(os.Stderr, "numvaultctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage:
  numvaultctl [flags] <method> [params...]
  numvaultctl [flags] -demo

methods: create read update delete add subtract multiply divide
examples:
  numvaultctl create grav_const 0.000000000066731039356729
  numvaultctl multiply grav_const planet_mass

flags:
`)
	flag.PrintDefaults()
}

func send(c *client.Client, timeout time.Duration, method rpc.Method, params []string, id uint64) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := c.Do(ctx, rpc.NewRequest(method, params, id))
	if err != nil {
		return err
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// runDemo replays the canonical gravitational-force walkthrough against
// a running server.
func runDemo(c *client.Client, timeout time.Duration) error {
	steps := []struct {
		method rpc.Method
		params []string
	}{
		{rpc.MethodCreate, []string{"grav_const", "0.000000000066731039356729"}},
		{rpc.MethodCreate, []string{"planet_mass", "6416930923733925522307001.29472615"}},
		{rpc.MethodMultiply, []string{"grav_const", "planet_mass"}},
		{rpc.MethodMultiply, []string{"planet_mass", "0.5"}},
		{rpc.MethodUpdate, []string{"grav_const", "428208470021099.94"}},
		{rpc.MethodDelete, []string{"grav_const"}},
	}
	for i, step := range steps {
		if err := send(c, timeout, step.method, step.params, uint64(i+1)); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.method, err)
		}
	}
	return nil
}
