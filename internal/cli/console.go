package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Console is the operator's input and output. Every workflow receives it
// explicitly.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// ReadLine prints prompt and returns the next line without its newline. It
// returns io.EOF once input is exhausted.
func (c *Console) ReadLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) Writer() io.Writer {
	return c.out
}

// ask re-prompts until parse accepts the line.
func ask[T any](c *Console, prompt string, parse func(string) (T, error)) (T, error) {
	for {
		line, err := c.ReadLine(prompt)
		if err != nil {
			var zero T
			return zero, err
		}
		v, err := parse(line)
		if err == nil {
			return v, nil
		}
		c.Println("Your input is invalid!")
	}
}
