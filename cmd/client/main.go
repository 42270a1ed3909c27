// shade-client: asks a shade-server for text shades without revealing the
// background colors
//
// The protocol runs over stdin/stdout unless -addr is given; results go to
// stderr in that case.
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"golang.org/x/exp/rand"

	"shadenet/shade"
	"shadenet/split"
	"shadenet/utils"
)

var (
	addr    = flag.String("addr", "", "TCP address of the server (default stdin/stdout)")
	random  = flag.Int("random", 0, "Also classify N random colors")
	seed    = flag.Uint64("seed", 0, "Random seed (0 = time based)")
	verbose = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose
	utils.Output = os.Stderr

	var colors []shade.Color
	for _, arg := range flag.Args() {
		c, err := shade.ParseColor(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		colors = append(colors, c)
	}
	s := *seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(s))
	for i := 0; i < *random; i++ {
		colors = append(colors, shade.RandomColor(rng))
	}

	var r io.Reader = os.Stdin
	var w io.Writer = os.Stdout
	out := io.Writer(os.Stderr)
	if *addr != "" {
		conn, err := net.Dial("tcp", *addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()
		r, w, out = conn, conn, os.Stdout
	}

	log("Shade client starting")
	client, err := split.NewClient(split.NewProtocol(r, w))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	topo := client.Topology()
	log("Server network: %d inputs, %d calculated layers, logN=%d", topo.InputSize, len(topo.Layers), topo.LogN)
	if topo.InputSize != 4 || len(topo.Layers) == 0 || topo.Layers[len(topo.Layers)-1].Size != 2 {
		fmt.Fprintf(os.Stderr, "Error: server network is not a color shade network\n")
		client.Close()
		os.Exit(1)
	}

	start := time.Now()
	for _, c := range colors {
		values, err := client.Predict(c.Attributes())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error predicting %s: %v\n", c.Hex(), err)
			client.Close()
			os.Exit(1)
		}
		fmt.Fprintf(out, "%s  %-5s  (DARK %.4f, LIGHT %.4f)\n", c.Hex(), shade.Classify(values), values[0], values[1])
	}
	if err := client.Close(); err != nil {
		log("Error closing: %v", err)
	}

	client.Stats.TotalTime = time.Since(start)
	utils.PrintTimingStats(&client.Stats, len(colors))
	log("Client done (%.2fs)", client.Stats.TotalTime.Seconds())
}

func log(format string, args ...interface{}) {
	if *verbose {
		fmt.Fprintf(os.Stderr, "[CLIENT] "+format+"\n", args...)
	}
}
