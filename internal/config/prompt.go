package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Choices offered for an existing server during reconfiguration.
const (
	choiceModify = 1
	choiceDelete = 2
	choiceKeep   = 3
)

// Prompter asks configuration questions on a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// ask prints question and returns the trimmed answer. EOF yields "".
func (p *Prompter) ask(question string) string {
	fmt.Fprint(p.out, question)
	line, _ := p.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func isYes(ans string) bool {
	switch strings.TrimSpace(ans) {
	case "y", "yes", "Y", "YES":
		return true
	}
	return false
}

func parseChoice(ans string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(ans))
	if err != nil || n < choiceModify || n > choiceKeep {
		return 0, false
	}
	return n, true
}

// newServer asks for one server. With askAnother it also reports whether
// the user wants to add one more.
func (p *Prompter) newServer(askAnother bool) (PiServer, bool) {
	url := p.ask("Please enter the url for your server:  ")
	pass := p.ask("Now, enter the password (same as the web interface) for that server:  ")
	srv := NewPiServer(url, pass)

	if askAnother {
		return srv, isYes(p.ask("Add another [y/N] "))
	}
	return srv, false
}

// modifyDeleteKeep re-asks until it gets a valid choice. EOF keeps the server.
func (p *Prompter) modifyDeleteKeep(s PiServer) int {
	for {
		fmt.Fprintf(p.out, "Found a config for '%s' with password ******\n", s.BaseURL)
		fmt.Fprintln(p.out, "Choose an option:")
		fmt.Fprintln(p.out, "  1) modify")
		fmt.Fprintln(p.out, "  2) delete")
		fmt.Fprintln(p.out, "  3) do not modify")
		fmt.Fprint(p.out, "Select [1-3]:  ")

		line, err := p.in.ReadString('\n')
		if n, ok := parseChoice(line); ok {
			return n
		}
		if err != nil {
			return choiceKeep
		}
		color.New(color.FgYellow).Fprintln(p.out, "\nInvalid response, select again")
	}
}

func (p *Prompter) addServers(c *PiConfig) {
	for {
		srv, more := p.newServer(true)
		if srv.BaseURL != "" {
			c.AddServer(srv)
		}
		if !more {
			return
		}
	}
}

// Configure runs the interactive setup. A nil or empty current config
// starts from scratch; otherwise each server can be modified, deleted or
// kept before new ones are added.
func (p *Prompter) Configure(current *PiConfig) *PiConfig {
	ret := &PiConfig{}
	if current != nil {
		ret.Servers = append(ret.Servers, current.Servers...)
	}

	if len(ret.Servers) == 0 {
		color.New(color.FgCyan, color.Bold).Fprintln(p.out, "Welcome to the mpihole configuration!")
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, "We're going to configure some new pihole servers.  For each")
		fmt.Fprintln(p.out, "one, you'll need the base url (http://mypihole.example.com)")
		fmt.Fprintln(p.out, "and the password that you use for the web interface.")
		fmt.Fprintln(p.out)
		p.addServers(ret)
		return ret
	}

	kept := make([]PiServer, 0, len(ret.Servers))
	for _, s := range ret.Servers {
		switch p.modifyDeleteKeep(s) {
		case choiceModify:
			// a blank url leaves the server as it was
			srv, _ := p.newServer(false)
			if srv.BaseURL == "" {
				fmt.Fprintf(p.out, "No url given, keeping '%s'\n", s.BaseURL)
				srv = s
			}
			kept = append(kept, srv)
		case choiceDelete:
		case choiceKeep:
			kept = append(kept, s)
		}
	}
	ret.Servers = kept

	if isYes(p.ask("Add new servers? [y/N]  ")) {
		p.addServers(ret)
	}
	return ret
}
