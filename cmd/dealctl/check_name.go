package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/tempizhere/dealhub/internal/checker"
)

// resultGrace задаёт ожидание ответа после конца ввода сверх паузы
const resultGrace = 5 * time.Second

func newCheckNameCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check-name",
		Short: "Check store names read from stdin, one per line",
		Long: `Reads store names line by line and checks whether each is taken.
A check runs only after input has been idle for the debounce delay,
so a fast burst of lines results in a single request for the last one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := checker.NewDuplicateChecker(opts.baseURL, opts.debounce, opts.logger())
			defer c.Close()
			return runCheckName(c, cmd.InOrStdin(), cmd.OutOrStdout(), opts.debounce+resultGrace)
		},
	}
}

// runCheckName планирует проверку на каждую строку и после EOF
// дожидается результата последней запланированной проверки
func runCheckName(c *checker.DuplicateChecker, in io.Reader, out io.Writer, wait time.Duration) error {
	var (
		mu       sync.Mutex
		firstErr error
		answered = make(map[uint64]struct{})
	)
	// notify сигналит о новом ответе, повторные сигналы схлопываются
	notify := make(chan struct{}, 1)
	onResult := func(seq uint64) func(checker.Result) {
		return func(res checker.Result) {
			mu.Lock()
			switch {
			case res.Err != nil:
				fmt.Fprintf(out, "%s: error: %v\n", res.Value, res.Err)
				if firstErr == nil {
					firstErr = res.Err
				}
			case res.Exists:
				fmt.Fprintf(out, "%s: taken\n", res.Value)
			default:
				fmt.Fprintf(out, "%s: available\n", res.Value)
			}
			answered[seq] = struct{}{}
			mu.Unlock()
			select {
			case notify <- struct{}{}:
			default:
			}
		}
	}

	var seq uint64
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		seq++
		c.ScheduleDuplicateCheck(name, onResult(seq))
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if seq == 0 {
		return nil
	}

	timeout := time.After(wait)
	for {
		mu.Lock()
		_, done := answered[seq]
		err := firstErr
		mu.Unlock()
		if done {
			return err
		}
		select {
		case <-notify:
		case <-timeout:
			return fmt.Errorf("no answer within %s", wait)
		}
	}
}
