package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/nixpkgs-monitor/updatetool/corpus"
	"github.com/nixpkgs-monitor/updatetool/updater"
)

func addCoverage(parentCmd *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "List packages which have (no) update coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.packages()
			if err != nil {
				return err
			}
			pkgs := c.Packages()
			coverage := updater.Coverage(pkgs, a.updaters(cmd.Context()))

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err = db.RebuildCoverage(coverage); err != nil {
				return err
			}
			if err = a.csv().Coverage(pkgs, coverage); err != nil {
				return err
			}
			printCoverage(cmd.OutOrStdout(), pkgs, coverage)
			return nil
		},
	}
	parentCmd.AddCommand(cmd)
}

func printCoverage(w io.Writer, pkgs []corpus.Package, coverage map[string]int) {
	covered, notCovered := lo.FilterReject(pkgs, func(pkg corpus.Package, _ int) bool {
		return coverage[pkg.InternalName] > 0
	})
	hard := lo.Filter(notCovered, func(pkg corpus.Package, _ int) bool {
		return updater.HardToCover(pkg)
	})

	fmt.Fprintf(w, "Covered %d packages: %s\n", len(covered), strings.Join(lo.Map(covered, func(pkg corpus.Package, _ int) string {
		return fmt.Sprintf("%s %d", pkg.Name, coverage[pkg.InternalName])
	}), ", "))
	fmt.Fprintf(w, "Not covered %d packages: %s\n", len(notCovered), nameVersions(notCovered))
	fmt.Fprintf(w, "Hard to cover %d packages: %s\n", len(hard), nameVersions(hard))
}

func nameVersions(pkgs []corpus.Package) string {
	return strings.Join(lo.Map(pkgs, func(pkg corpus.Package, _ int) string {
		return pkg.Name + ":" + pkg.Version
	}), ", ")
}

func addCheckUpdates(parentCmd *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "check-updates",
		Short: "List packages which have updates available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.packages()
			if err != nil {
				return err
			}
			return a.checkUpdates(cmd, c.Packages())
		},
	}
	parentCmd.AddCommand(cmd)
}

func addCheckPackage(parentCmd *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "check-package PACKAGE",
		Short: "Check what updates are available for PACKAGE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.packages()
			if err != nil {
				return err
			}
			pkg, ok := lo.Find(c.Packages(), func(pkg corpus.Package) bool {
				return pkg.InternalName == args[0]
			})
			if !ok {
				return xerrors.Errorf("unknown package: %s", args[0])
			}
			return a.checkUpdates(cmd, []corpus.Package{pkg})
		},
	}
	parentCmd.AddCommand(cmd)
}

// checkUpdates asks every updater for newer versions of pkgs and stores what
// each one found.
func (a *app) checkUpdates(cmd *cobra.Command, pkgs []corpus.Package) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	updaters := a.updaters(ctx)

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	versions := map[string]map[string]string{}
	for _, u := range updaters {
		found := map[string]string{}
		bar := pb.New(len(pkgs)).SetWriter(cmd.ErrOrStderr()).Start()
		for _, pkg := range pkgs {
			bar.Increment()
			if !u.Covers(pkg) {
				continue
			}
			v, err := u.NewestVersion(ctx, pkg)
			if err != nil {
				log.Warnf("%s: %s", u.Name(), err)
				continue
			}
			if v == "" {
				continue
			}
			fmt.Fprintf(out, "%s has new version %s according to %s\n", pkg, v, u.Name())
			found[pkg.InternalName] = v
		}
		bar.Finish()

		if err = db.RebuildUpdates(u.Name(), found); err != nil {
			return err
		}
		versions[u.Name()] = found
	}

	names := lo.Map(updaters, func(u updater.Updater, _ int) string { return u.Name() })
	return a.csv().Updates(pkgs, names, updater.Coverage(pkgs, updaters), versions)
}

func addCheckPkgVersionMatch(parentCmd *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "check-pkg-version-match",
		Short: "List packages whose tarball can't be parsed or doesn't match the package version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.packages()
			if err != nil {
				return err
			}

			var mismatched []string
			for _, pkg := range c.Packages() {
				if updater.VersionsMatch(pkg) {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", pkg, pkg.URL)
				mismatched = append(mismatched, pkg.InternalName)
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return db.RebuildVersionMismatch(mismatched)
		},
	}
	parentCmd.AddCommand(cmd)
}

func addListCorpus(parentCmd *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "list-corpus",
		Short: "Load the package listing of the distribution and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.packages()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, pkg := range c.Packages() {
				fmt.Fprintln(out, pkg)
			}
			log.Infof("%s: %d packages", a.opts.distro, c.Len())
			return nil
		},
	}
	parentCmd.AddCommand(cmd)
}
