package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// interactive reports whether stdin is a terminal that can answer prompts.
var interactive = func() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// field is a value that can be asked for when its flag was not given.
type field struct {
	flag     string
	title    string
	value    *string
	secret   bool
	validate func(string) error
}

// askMissing prompts for every empty field in one form. Without a terminal
// it fails and names the flags to pass instead.
func askMissing(fields ...field) error {
	var inputs []huh.Field
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(*f.value) != "" {
			continue
		}
		missing = append(missing, "--"+f.flag)

		validate := f.validate
		if validate == nil {
			validate = required(f.title)
		}
		in := huh.NewInput().Title(f.title).Value(f.value).Validate(validate)
		if f.secret {
			in = in.EchoMode(huh.EchoModePassword)
		}
		inputs = append(inputs, in)
	}
	if len(inputs) == 0 {
		return nil
	}
	if !interactive() {
		return fmt.Errorf("missing %s (no terminal to prompt on)", strings.Join(missing, ", "))
	}

	if err := huh.NewForm(huh.NewGroup(inputs...)).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}

// confirm asks a yes/no question. Without a terminal it refuses, so
// destructive commands need --force in scripts.
func confirm(title string) (bool, error) {
	if !interactive() {
		return false, errors.New("refusing to continue without confirmation; pass --force")
	}
	var ok bool
	err := huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&ok).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", strings.ToLower(name))
		}
		return nil
	}
}
