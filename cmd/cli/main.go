// Command cli is a small client for the accountd HTTP API. It can register
// a user, log in, and list users; passwords are read without echo.
//
// Usage:
//
//	cli -a http://localhost:8080 register
//	cli -a http://localhost:8080 login
//	cli -a http://localhost:8080 -t <token> list
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/term"
)

type credentials struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

func main() {
	addr := flag.String("a", "http://localhost:8080", "server base URL")
	token := flag.String("t", "", "session token for protected commands")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: cli [-a addr] [-t token] register|login|list")
		os.Exit(2)
	}

	var err error
	switch flag.Arg(0) {
	case "register":
		err = register(*addr)
	case "login":
		err = login(*addr)
	case "list":
		err = list(*addr, *token)
	default:
		err = fmt.Errorf("unknown command %q", flag.Arg(0))
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func register(addr string) error {
	reader := bufio.NewReader(os.Stdin)
	username := promptLine(reader, "Username: ")
	name := promptLine(reader, "Name: ")
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	return postCredentials(addr+"/users", credentials{Username: username, Name: name, Password: password})
}

func login(addr string) error {
	reader := bufio.NewReader(os.Stdin)
	username := promptLine(reader, "Username: ")
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	return postCredentials(addr+"/login", credentials{Username: username, Password: password})
}

func list(addr, token string) error {
	if token == "" {
		return fmt.Errorf("list requires a session token (-t)")
	}

	req, err := http.NewRequest(http.MethodGet, addr+"/users", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func postCredentials(url string, c credentials) error {
	body, err := json.Marshal(c)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}

func promptLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(password), nil
}
