package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NicolasHaas/gotrivia/pkg/client"
	"github.com/NicolasHaas/gotrivia/pkg/logging"
	"github.com/NicolasHaas/gotrivia/pkg/version"
)

func main() {
	settings := client.LoadSettings()

	addr := flag.String("addr", settings.ServerAddr, "Server address")
	user := flag.String("user", settings.Username, "Username (prompted if empty)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Full())
		return
	}

	// Default to "info"; override with GOTRIVIA_LOG_LEVEL env var.
	level := "info"
	if v := os.Getenv("GOTRIVIA_LOG_LEVEL"); v != "" {
		level = v
	}
	_ = logging.Setup(logging.Options{Level: level, Output: os.Stderr})

	c, err := client.Dial(*addr, 5*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot reach server at %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer c.Close()

	in := bufio.NewScanner(os.Stdin)

	username := loginLoop(c, in, *user)

	settings.ServerAddr = *addr
	settings.Username = username
	if err := settings.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: save settings: %v\n", err)
	}

	menuLoop(c, in)
}

// loginLoop prompts for credentials until the server accepts them. Returns
// the username that logged in.
func loginLoop(c *client.Client, in *bufio.Scanner, defaultUser string) string {
	for {
		username := defaultUser
		if username == "" {
			username = prompt(in, "Username: ")
		} else {
			fmt.Printf("Username [%s]: ", defaultUser)
			if line, ok := readLine(in); ok && line != "" {
				username = line
			}
		}
		password := prompt(in, "Password: ")

		err := c.Login(username, password)
		if err == nil {
			fmt.Println("Logged in!")
			return username
		}

		var se *client.ServerError
		if errors.As(err, &se) {
			fmt.Println("Login failed:", se.Message)
			defaultUser = ""
			continue
		}
		fmt.Fprintf(os.Stderr, "connection error: %v\n", err)
		os.Exit(1)
	}
}

func menuLoop(c *client.Client, in *bufio.Scanner) {
	for {
		fmt.Print(`
p        Play a trivia question
s        Get my score
h        Get high score
l        Get logged users
q        Quit
`)
		switch prompt(in, "Please enter your choice: ") {
		case "p":
			playQuestion(c, in)
		case "s":
			score, err := c.MyScore()
			if report(err) {
				fmt.Println("Your score is", score)
			}
		case "h":
			table, err := c.HighScore()
			if report(err) {
				fmt.Print(table)
			}
		case "l":
			users, err := c.LoggedUsers()
			if report(err) {
				fmt.Println("Logged users:", users)
			}
		case "q", "":
			if err := c.Logout(); err != nil {
				fmt.Fprintf(os.Stderr, "logout: %v\n", err)
			}
			fmt.Println("Goodbye!")
			return
		default:
			fmt.Println("Unknown choice")
		}
	}
}

// playQuestion fetches one question, shows the numbered options, and submits
// the chosen answer.
func playQuestion(c *client.Client, in *bufio.Scanner) {
	q, ok, err := c.GetQuestion()
	if !report(err) {
		return
	}
	if !ok {
		fmt.Println("No more questions for you, game over!")
		return
	}

	fmt.Printf("\nQ%d: %s\n", q.ID, q.Text)
	for i, a := range q.Answers {
		fmt.Printf("  %d. %s\n", i+1, a)
	}

	var answer string
	for {
		choice := prompt(in, "Your answer [1-"+strconv.Itoa(len(q.Answers))+"]: ")
		n, err := strconv.Atoi(choice)
		if err == nil && n >= 1 && n <= len(q.Answers) {
			answer = q.Answers[n-1]
			break
		}
		fmt.Println("Please enter a number between 1 and", len(q.Answers))
	}

	res, err := c.SendAnswer(q.ID, answer)
	if !report(err) {
		return
	}
	if res.Correct {
		fmt.Println("YES!!!", res.Message)
	} else {
		fmt.Println("Nope.", res.Message)
	}
}

// report prints an error if there is one; returns true when err is nil.
func report(err error) bool {
	if err == nil {
		return true
	}
	var se *client.ServerError
	if errors.As(err, &se) {
		fmt.Println("Server says:", se.Message)
		return false
	}
	fmt.Fprintf(os.Stderr, "connection error: %v\n", err)
	os.Exit(1)
	return false
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	line, _ := readLine(in)
	return line
}

func readLine(in *bufio.Scanner) (string, bool) {
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}
