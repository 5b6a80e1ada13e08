// Command railwayctl is a thin operator CLI over railwayaid's REST API:
// it never touches the core packages directly, the same separation the
// daemon's own HTTP boundary enforces for any other client.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	flag "github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "railwayctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("railwayctl", flag.ContinueOnError)
	addr := fs.String("addr", "http://localhost:8080", "railwayaid HTTP address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: railwayctl [--addr URL] <network|schedules|conflicts|resolve|plan|events>")
	}

	switch rest[0] {
	case "network":
		return getAndPrint(*addr + "/api/network")
	case "schedules":
		return getAndPrint(*addr + "/api/schedules")
	case "conflicts":
		return getAndPrint(*addr + "/api/conflicts")
	case "resolve":
		return postAndPrint(*addr+"/api/conflicts/resolve", nil)
	case "plan":
		return postAndPrint(*addr+"/api/conflicts/plan", nil)
	case "events":
		return getAndPrint(*addr + "/api/events")
	default:
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func getAndPrint(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func postAndPrint(url string, body io.Reader) error {
	resp, err := http.Post(url, "application/json", body)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %s: %s", resp.Status, string(b))
	}
	var v interface{}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decoding response: %w", err)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
