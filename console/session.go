package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
)

type KeyType string

const (
	KeyInt   KeyType = "int"
	KeyFloat KeyType = "float"
)

func ParseKeyType(name string) (KeyType, error) {
	switch kt := KeyType(strings.ToLower(strings.TrimSpace(name))); kt {
	case KeyInt, KeyFloat:
		return kt, nil
	default:
	}
	return "", infra.NewErrorStack("[console] unknown key type " + name)
}

// Examples are shown in the insert and delete prompts.
type Examples struct {
	Insert string
	Delete string
}

var (
	IntExamples   = Examples{Insert: "1 2 3 4 5", Delete: "3 4"}
	FloatExamples = Examples{Insert: "1.0 2.0 3.2 4.4 1.5", Delete: "3.2 1.5"}
)

const separator = "----------------------------------------"

// Run starts a session for the engine and key type and blocks until
// the user quits, in is exhausted or ctx is done.
func Run(ctx context.Context, engine tree.Engine, keyType KeyType, in io.Reader, out io.Writer) error {
	switch keyType {
	case KeyInt:
		s, err := NewSession[int](engine, strconv.Atoi, IntExamples, in, out)
		if err != nil {
			return err
		}
		return s.Run(ctx)
	case KeyFloat:
		s, err := NewSession[float64](engine, parseFloat, FloatExamples, in, out)
		if err != nil {
			return err
		}
		return s.Run(ctx)
	default:
	}
	return infra.NewErrorStack("[console] unknown key type " + string(keyType))
}

// NaN has no order, it is rejected like any unparsable token.
func parseFloat(token string) (float64, error) {
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, strconv.ErrSyntax
	}
	return f, nil
}

type Session[K infra.OrderedKey] struct {
	engine   tree.Engine
	tree     tree.BalancedTree[K]
	parse    func(string) (K, error)
	examples Examples
	in       *bufio.Scanner
	out      io.Writer
}

func NewSession[K infra.OrderedKey](
	engine tree.Engine,
	parse func(string) (K, error),
	examples Examples,
	in io.Reader,
	out io.Writer,
) (*Session[K], error) {
	if parse == nil || in == nil || out == nil {
		return nil, infra.NewErrorStack("[console] session requires a parser, a reader and a writer")
	}
	t, err := tree.New[K](engine, 0)
	if err != nil {
		return nil, err
	}
	return &Session[K]{
		engine:   engine,
		tree:     t,
		parse:    parse,
		examples: examples,
		in:       bufio.NewScanner(in),
		out:      out,
	}, nil
}

func (s *Session[K]) Tree() tree.BalancedTree[K] {
	return s.tree
}

func (s *Session[K]) title() string {
	if s.engine == tree.EngineRB {
		return "Red-Black Tree"
	}
	return "AVL Tree"
}

func (s *Session[K]) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func (s *Session[K]) println(args ...any) {
	_, _ = fmt.Fprintln(s.out, args...)
}

func (s *Session[K]) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Session[K]) menu() {
	s.println(separator)
	s.println("Choose an operation by its number:")
	s.println("1. Insert key(s).")
	s.println("2. Delete key(s).")
	s.println("3. Count the leaves.")
	s.println("4. Show the height.")
	s.println("5. Print the in-order traversal.")
	s.println("6. Check whether the tree is empty.")
	s.println("7. Print the tree structure.")
	s.println("8. Quit.")
	s.println("9. Print the pre-order traversal.")
	s.println("10. Print the post-order traversal.")
	s.println("11. Validate the tree invariants.")
	s.println(separator)
}

// Run returns the scanner error of the input, nil on quit or EOF.
func (s *Session[K]) Run(ctx context.Context) error {
	s.println(separator)
	s.printf("%s session started.\n", s.title())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.menu()
		line, ok := s.readLine()
		if !ok {
			return s.in.Err()
		}
		choice, err := strconv.Atoi(line)
		if err != nil {
			s.println("Warning: enter a valid integer.")
			continue
		}
		s.println(separator)
		switch choice {
		case 1:
			s.insert()
		case 2:
			s.delete()
		case 3:
			s.printf("Leaf count: %d\n", s.tree.LeafCount())
		case 4:
			s.printf("Height: %d\n", s.tree.Height())
		case 5:
			s.printf("In-order: %s\n", joinKeys(s.tree.InOrder()))
		case 6:
			if s.tree.IsEmpty() {
				s.println("The tree is empty.")
			} else {
				s.println("The tree is not empty.")
			}
		case 7:
			if err = s.tree.Dump(s.out); err != nil {
				return err
			}
		case 8:
			s.println("Bye.")
			return nil
		case 9:
			s.printf("Pre-order: %s\n", joinKeys(s.tree.PreOrder()))
		case 10:
			s.printf("Post-order: %s\n", joinKeys(s.tree.PostOrder()))
		case 11:
			if err = tree.TreeValidate[K](s.tree); err != nil {
				s.printf("The tree is invalid: %v\n", err)
			} else {
				s.println("The tree is valid.")
			}
		default:
			s.println("Wrong input, choose a number from the menu.")
		}
	}
}

// readKeys parses a whitespace separated line. Bad tokens are
// reported and skipped.
func (s *Session[K]) readKeys() []K {
	line, ok := s.readLine()
	if !ok || line == "" {
		s.println("Warning: no keys provided.")
		return nil
	}
	keys := make([]K, 0, 8)
	for _, token := range strings.Fields(line) {
		k, err := s.parse(token)
		if err != nil {
			s.printf("Warning: '%s' is not a valid key.\n", token)
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

func (s *Session[K]) insert() {
	s.printf("Keys to insert, separated by spaces, e.g. %s\n", s.examples.Insert)
	inserted := make([]K, 0, 8)
	for _, k := range s.readKeys() {
		if !s.tree.Insert(k) {
			s.printf("Insert failed: %v already exists.\n", k)
			continue
		}
		inserted = append(inserted, k)
	}
	if len(inserted) > 0 {
		s.printf("Inserted: %s\n", joinKeys(slices.Values(inserted)))
	}
}

func (s *Session[K]) delete() {
	s.printf("Current keys: %s\n", joinKeys(s.tree.InOrder()))
	s.printf("Keys to delete, separated by spaces, e.g. %s\n", s.examples.Delete)
	for _, k := range s.readKeys() {
		if s.tree.Delete(k) {
			s.printf("Deleted %v.\n", k)
		} else {
			s.printf("Key %v does not exist.\n", k)
		}
	}
}

func joinKeys[K infra.OrderedKey](seq iter.Seq[K]) string {
	keys := slices.Collect(seq)
	if len(keys) == 0 {
		return "(empty)"
	}
	return strings.Join(lo.Map(keys, func(k K, _ int) string {
		return fmt.Sprint(k)
	}), " ")
}
