package main

import (
	"context"
	"fmt"
)

// rerank recomputes leaderboard ranks from the users' solved totals,
// useful after fixing results by hand.
func (cli *commandLine) rerank() error {
	ctx := context.Background()
	if err := cli.usrSvc.Rerank(ctx); err != nil {
		return err
	}
	board, err := cli.usrSvc.Leaderboard(ctx)
	if err != nil {
		return err
	}
	for _, usr := range board {
		fmt.Printf("%4d  %-20s %d solved\n", usr.Rank, usr.Username, usr.TotalSolved)
	}
	return nil
}
