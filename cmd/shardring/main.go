package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"time"

	shardring "go-shardring"
	"go-shardring/database"
	"go-shardring/router"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	realNodes    int
	virtualNodes int
	hashName     string
	logLevel     string
	sampleKeys   int
	shardDSNs    []string
	pingTimeout  time.Duration
)

var hashFuncs = map[string]shardring.HashFunc{
	"murmur3": shardring.Murmur3,
	"xxhash":  shardring.XXHash,
	"fnv32a":  shardring.FNV32a,
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "shardring",
		Short: "Inspect a consistent hashing ring of shards",
		Long: `Shardring builds a consistent hashing ring with virtual nodes and shows
which real node (shard) owns a key. Nothing is persisted: every invocation
builds the ring from the flags.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().IntVar(&realNodes, "real-nodes", 32, "Number of real nodes (shards)")
	rootCmd.PersistentFlags().IntVar(&virtualNodes, "virtual-nodes", 64, "Number of virtual nodes per real node")
	rootCmd.PersistentFlags().StringVar(&hashName, "hash", "murmur3", "Hash function: murmur3, xxhash or fnv32a")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	var locateCmd = &cobra.Command{
		Use:   "locate KEY...",
		Short: "Print the owner of each key",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runLocate,
	}

	var topologyCmd = &cobra.Command{
		Use:   "topology",
		Short: "Print every ring position and its owner",
		Args:  cobra.NoArgs,
		RunE:  runTopology,
	}

	var sampleCmd = &cobra.Command{
		Use:   "sample",
		Short: "Route random keys and print how many landed on each node",
		Args:  cobra.NoArgs,
		RunE:  runSample,
	}
	sampleCmd.Flags().IntVar(&sampleKeys, "keys", 100000, "Number of random keys to route")

	var routeCmd = &cobra.Command{
		Use:   "route KEY",
		Short: "Route a key to a PostgreSQL shard and ping it",
		Long: `Route opens one PostgreSQL connection pool per --shard DSN, builds a ring
with one real node per shard (--real-nodes is ignored), routes KEY and pings
the owning shard.`,
		Args: cobra.ExactArgs(1),
		RunE: runRoute,
	}
	routeCmd.Flags().StringArrayVar(&shardDSNs, "shard", nil, "PostgreSQL DSN of a shard, repeat once per shard in node order")
	routeCmd.Flags().DurationVar(&pingTimeout, "timeout", 5*time.Second, "Timeout for opening and pinging shards")
	_ = routeCmd.MarkFlagRequired("shard")

	var exploreCmd = &cobra.Command{
		Use:   "explore",
		Short: "Type a key and watch its owner change with every keystroke",
		Args:  cobra.NoArgs,
		RunE:  runExplore,
	}

	rootCmd.AddCommand(locateCmd, topologyCmd, sampleCmd, routeCmd, exploreCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func buildRing(realNodeCount int) (*shardring.HashRing, error) {
	var hashFunc, ok = hashFuncs[hashName]
	if !ok {
		return nil, fmt.Errorf("unknown hash function %q", hashName)
	}

	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	ring, err := shardring.New(realNodeCount, virtualNodes,
		shardring.WithHashFunc(hashFunc),
		shardring.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build ring: %w", err)
	}
	return ring, nil
}

func runLocate(cmd *cobra.Command, args []string) error {
	ring, err := buildRing(realNodes)
	if err != nil {
		return err
	}

	for _, key := range args {
		var position, owner = ring.Owner(key)
		fmt.Fprintf(cmd.OutOrStdout(), "%q -> node %d (position %d)\n", key, owner, position)
	}
	return nil
}

func runTopology(cmd *cobra.Command, args []string) error {
	ring, err := buildRing(realNodes)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), ring.String())
	return nil
}

func runSample(cmd *cobra.Command, args []string) error {
	if sampleKeys <= 0 {
		return fmt.Errorf("--keys must be positive: %d", sampleKeys)
	}

	ring, err := buildRing(realNodes)
	if err != nil {
		return err
	}

	var (
		counts = make(map[int]int, ring.RealNodeCount())
		start  = time.Now()
	)
	for range sampleKeys {
		counts[ring.Hash(uuid.NewString())]++
	}
	var elapsed = time.Since(start)

	var nodes = make([]int, 0, len(counts))
	for node := range counts {
		nodes = append(nodes, node)
	}
	sort.Ints(nodes)

	var (
		out  = cmd.OutOrStdout()
		mean = float64(sampleKeys) / float64(ring.RealNodeCount())
	)
	for _, node := range nodes {
		fmt.Fprintf(out, "node %-5d  keys: %-8d  (%+.1f%%)\n", node, counts[node], (float64(counts[node])/mean-1)*100)
	}
	fmt.Fprintf(out, "\n%d keys over %d nodes in %s\n", sampleKeys, ring.RealNodeCount(), elapsed.Round(time.Millisecond))
	return nil
}

func runRoute(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	ring, err := buildRing(len(shardDSNs))
	if err != nil {
		return err
	}

	shards, err := database.Open(ctx, shardDSNs)
	if err != nil {
		return fmt.Errorf("failed to connect to shards: %w", err)
	}
	defer database.CloseAll(shards)

	logger, err := newLogger()
	if err != nil {
		return err
	}

	r, err := router.New(ring, shards, router.WithLogger(logger))
	if err != nil {
		return err
	}

	var idx, db = r.Route(args[0])
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping shard %d: %w", idx, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%q -> shard %d (%s) ✓ reachable\n", args[0], idx, redact(shardDSNs[idx]))
	return nil
}

// redact hides the password of URL-style DSNs; other forms are not printed.
func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "dsn hidden"
	}
	return u.Redacted()
}
