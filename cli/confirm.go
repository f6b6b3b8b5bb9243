package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/julio4/light-evm/vm"
)

// Confirmer is a vm.Confirmer holding a terminal that must be released.
type Confirmer interface {
	vm.Confirmer
	io.Closer
}

type lineReader interface {
	Readline() (string, error)
}

// KeyConfirmer blocks until the user enters the step key, or an empty line.
type KeyConfirmer struct {
	r      lineReader
	key    string
	closer io.Closer
}

func NewKeyConfirmer(key string) (*KeyConfirmer, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: fmt.Sprintf("press '%s' + enter to step > ", key),
	})
	if err != nil {
		return nil, fmt.Errorf("start readline: %w", err)
	}
	return &KeyConfirmer{
		r:      rl,
		key:    key,
		closer: rl,
	}, nil
}

func (c *KeyConfirmer) Confirm() error {
	for {
		line, err := c.r.Readline()
		if err != nil {
			return fmt.Errorf("waiting for '%s': %w", c.key, err)
		}
		if accepts(line, c.key) {
			return nil
		}
	}
}

func (c *KeyConfirmer) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

func accepts(line, key string) bool {
	line = strings.TrimSpace(line)
	return line == "" || strings.EqualFold(line, key)
}
