package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	mkbsc "github.com/gpihl/mkbsc"
	"github.com/gpihl/mkbsc/internal/store"
)

var (
	solveGame      string
	solveMaxLevels int
	solveIsoBudget int
	solveOut       string
	solveDotDir    string
	solveETrees    bool
	solveDB        string
	solveName      string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Iterate the construction on a game until its fixed point",
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&solveGame, "game", "g", "", "path to a game definition (JSON)")
	solveCmd.Flags().IntVar(&solveMaxLevels, "max-levels", envInt("MKBSC_MAX_LEVELS", 10), "iteration bound")
	solveCmd.Flags().IntVar(&solveIsoBudget, "iso-budget", envInt("MKBSC_ISO_BUDGET", 0), "isomorphism search budget (0 = default)")
	solveCmd.Flags().StringVarP(&solveOut, "out", "o", "", "write the fixed-point game to this file")
	solveCmd.Flags().StringVar(&solveDotDir, "dot", "", "write DOT renderings into this directory")
	solveCmd.Flags().BoolVar(&solveETrees, "etrees", false, "also write per-player epistemic trees of the initial state")
	solveCmd.Flags().StringVar(&solveDB, "db", os.Getenv("MKBSC_DB"), "archive every level in this SQLite database")
	solveCmd.Flags().StringVar(&solveName, "name", "", "run name for the archive (defaults to the game file name)")
	_ = solveCmd.MarkFlagRequired("game")
}

func runSolve(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(solveGame)
	if err != nil {
		return err
	}
	var def mkbsc.GameDef
	if err := json.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("parse %s: %w", solveGame, err)
	}
	g0, err := mkbsc.NewGame(def)
	if err != nil {
		return err
	}

	fixed, level, err := mkbsc.IterateUntilFixed(cmd.Context(), g0, mkbsc.IterateOptions{
		MaxLevels: solveMaxLevels,
		IsoBudget: solveIsoBudget,
		Logger:    log,
	})
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"level":  level,
		"states": fixed.NumStates(),
	}).Info("fixed point found")

	if solveOut != "" {
		if err := mkbsc.WriteGameFile(solveOut, fixed); err != nil {
			return err
		}
	}
	if solveDotDir != "" {
		if err := writeDot(fixed); err != nil {
			return err
		}
	}
	if solveDB != "" {
		if err := archive(cmd, g0, level); err != nil {
			return err
		}
	}
	return nil
}

func writeDot(fixed *mkbsc.Game) error {
	if err := os.MkdirAll(solveDotDir, 0o755); err != nil {
		return err
	}
	dot := mkbsc.GameDOT(fixed, mkbsc.FormatOptions{Style: mkbsc.StyleNice})
	if err := os.WriteFile(filepath.Join(solveDotDir, "game.dot"), []byte(dot), 0o644); err != nil {
		return err
	}
	if !solveETrees || fixed.Level() == 0 {
		return nil
	}
	trees, err := mkbsc.Trees(fixed.Initial())
	if err != nil {
		return err
	}
	for _, t := range trees {
		name := fmt.Sprintf("etree-player%d.dot", t.Player())
		if err := os.WriteFile(filepath.Join(solveDotDir, name), []byte(t.DOT()), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// archive recomputes the hierarchy level by level and stores each one.
// Recomputation is cheap next to the isomorphism checks already paid
// for, and keeps the iteration API free of persistence concerns.
func archive(cmd *cobra.Command, g0 *mkbsc.Game, fixedLevel int) error {
	st, err := store.Open(solveDB)
	if err != nil {
		return err
	}
	defer st.Close()

	name := solveName
	if name == "" {
		name = filepath.Base(solveGame)
	}
	runID, err := st.CreateRun(cmd.Context(), name)
	if err != nil {
		return err
	}
	g := g0
	for lvl := 0; ; lvl++ {
		data, err := mkbsc.MarshalGame(g)
		if err != nil {
			return err
		}
		if err := st.SaveLevel(cmd.Context(), runID, lvl, lvl == fixedLevel, data); err != nil {
			return err
		}
		if lvl == fixedLevel {
			break
		}
		if g, err = mkbsc.Transform(g); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{"run": runID, "levels": fixedLevel + 1}).Info("archived run")
	return nil
}
