// Command syft-ctl talks to a running worker: it stores and pulls objects,
// probes and searches the object store, and runs operations.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shaanrockz/PySyft/pkg/config"
	"github.com/shaanrockz/PySyft/pkg/execution"
	"github.com/shaanrockz/PySyft/pkg/serde"
	"github.com/shaanrockz/PySyft/pkg/transport"
	"github.com/shaanrockz/PySyft/pkg/transport/tcp"
	"github.com/shaanrockz/PySyft/pkg/transport/ws"
	"github.com/shaanrockz/PySyft/pkg/types"
	"github.com/shaanrockz/PySyft/pkg/worker"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		peerName   = flag.String("worker", "", "peer name from config (overrides -addr)")
		addr       = flag.String("addr", "tcp://127.0.0.1:7711", "worker address as scheme://rest")
		formatName = flag.String("format", "msgpack", "wire format: msgpack|cbor|proto")
		timeout    = flag.Duration("timeout", 5*time.Second, "dial and call timeout")
		tags       = flag.String("tags", "", "send: comma-separated tags")
		desc       = flag.String("desc", "", "send: description")
		target     = flag.String("target", "", "call: object id the operation runs against")
		out        = flag.String("out", "", "call: comma-separated object ids to bind results to")
	)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	format, err := serde.ParseFormat(*formatName)
	if err != nil {
		fatalf("%v", err)
	}

	dialAddr := *addr
	if *peerName != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fatalf("load config: %v", err)
		}
		p, ok := cfg.Peer(*peerName)
		if !ok {
			fatalf("no peer %q in config", *peerName)
		}
		dialAddr = p.Address
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	registry := transport.NewRegistry(tcp.New(), ws.New())
	conn, err := registry.DialBackoff(ctx, dialAddr, *timeout)
	if err != nil {
		fatalf("dial %s: %v", dialAddr, err)
	}
	cli := worker.NewClient(serde.NewContext("syft-ctl").WithFormat(format), conn)
	defer cli.Close()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "send":
		requireArgs(rest, 2, "send <id> <value>")
		id := parseID(rest[0])
		if err := cli.SendObject(ctx, id, parseLiteral(rest[1]), splitList(*tags), *desc); err != nil {
			fatalf("send: %v", err)
		}
		fmt.Println("stored", id)
	case "get":
		requireArgs(rest, 1, "get <id>")
		v, err := cli.RequestObject(ctx, parseID(rest[0]))
		if err != nil {
			fatalf("get: %v", err)
		}
		printValue(v)
	case "probe":
		requireArgs(rest, 1, "probe <id>")
		none, err := cli.IsNone(ctx, parseID(rest[0]))
		if err != nil {
			fatalf("probe: %v", err)
		}
		fmt.Println(none)
	case "shape":
		requireArgs(rest, 1, "shape <id>")
		shape, err := cli.GetShape(ctx, parseID(rest[0]))
		if err != nil {
			fatalf("shape: %v", err)
		}
		fmt.Println(shape)
	case "delete":
		requireArgs(rest, 1, "delete <id>")
		id := parseID(rest[0])
		if err := cli.ForceDelete(ctx, id); err != nil {
			fatalf("delete: %v", err)
		}
		fmt.Println("deleted", id)
	case "search":
		if len(rest) == 0 {
			fatalf("usage: search <term>...")
		}
		ids, err := cli.Search(ctx, rest...)
		if err != nil {
			fatalf("search: %v", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
	case "call":
		if len(rest) == 0 {
			fatalf("usage: call <operation> [arg]...")
		}
		opArgs := make(execution.Args, 0, len(rest)-1)
		for _, a := range rest[1:] {
			opArgs = append(opArgs, parseLiteral(a))
		}
		var tgt any
		if *target != "" {
			tgt = parseID(*target)
		}
		v, err := cli.ExecuteCommand(ctx, rest[0], tgt, opArgs, nil, parseIDList(*out))
		if err != nil {
			fatalf("call: %v", err)
		}
		if *out != "" {
			fmt.Println("ok")
		} else {
			printValue(v)
		}
	case "fn":
		if len(rest) == 0 {
			fatalf("usage: fn <name> [arg]...")
		}
		v, err := cli.ExecuteWorkerFunction(ctx, rest[0], payloadOf(rest[1:]))
		if err != nil {
			fatalf("fn: %v", err)
		}
		printValue(v)
	case "plan":
		if len(rest) == 0 {
			fatalf("usage: plan <name> [arg]...")
		}
		v, err := cli.ExecutePlanCommand(ctx, rest[0], payloadOf(rest[1:]))
		if err != nil {
			fatalf("plan: %v", err)
		}
		printValue(v)
	default:
		fatalf("unknown command %q; run with no arguments for usage", cmd)
	}
}

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprint(w, `Usage: syft-ctl [flags] <command> [args]

Commands:
  send <id> <value>     store a value on the worker
  get <id>              pull an object (removes it from the worker)
  probe <id>            report whether the object is absent or nil
  shape <id>            print a stored tensor's shape
  delete <id>           delete an object
  search <term>...      find object ids by id, tag or description text
  call <op> [arg]...    run an operation (see -target, -out)
  fn <name> [arg]...    run a registered worker function
  plan <name> [arg]...  run a registered plan command

Flags:
`)
	flag.PrintDefaults()
}

func requireArgs(args []string, n int, use string) {
	if len(args) != n {
		fatalf("usage: %s", use)
	}
}

func parseID(s string) types.ObjectID {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		fatalf("bad object id %q", s)
	}
	return types.ObjectID(n)
}

func parseIDList(s string) []types.ObjectID {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]types.ObjectID, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, parseID(strings.TrimSpace(p)))
	}
	return ids
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseLiteral reads a command line operand as an integer, float, bool or
// null before falling back to a plain string.
func parseLiteral(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null", "nil":
		return nil
	}
	return s
}

func payloadOf(args []string) any {
	switch len(args) {
	case 0:
		return nil
	case 1:
		return parseLiteral(args[0])
	}
	vals := make([]any, 0, len(args))
	for _, a := range args {
		vals = append(vals, parseLiteral(a))
	}
	return vals
}

func printValue(v any) {
	switch x := v.(type) {
	case nil:
		fmt.Println("null")
	case string:
		fmt.Println(x)
	case fmt.Stringer:
		fmt.Println(x.String())
	default:
		if b, err := json.Marshal(x); err == nil {
			fmt.Println(string(b))
			return
		}
		fmt.Printf("%v\n", x)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
