package cmd

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/nixpkgs-monitor/updatetool/advisory"
	"github.com/nixpkgs-monitor/updatetool/match"
	"github.com/nixpkgs-monitor/updatetool/utils"
)

const (
	nvdTarget  = "nvd"
	glsaTarget = "glsa"
)

func addCVEUpdate(parentCmd *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "cve-update",
		Short: "Fetch NVD feeds that changed since the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := advisory.NewRefresher(a.fs, a.conf.FeedDir, a.conf.NVDBaseURL, a.conf.NVDFeeds)
			if err != nil {
				return err
			}
			if err = r.Refresh(cmd.Context()); err != nil {
				return xerrors.Errorf("CVE update error: %w", err)
			}
			return utils.SetLastUpdatedDate(utils.NewFs(a.fs), a.conf.FeedDir, nvdTarget, time.Now().UTC())
		},
	}
	parentCmd.AddCommand(cmd)
}

func addGLSASync(parentCmd *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "glsa-sync",
		Short: "Download the GLSA tree into the GLSA directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := advisory.SyncGLSA(cmd.Context(), a.conf.GLSASource, a.conf.GLSADir); err != nil {
				return xerrors.Errorf("GLSA sync error: %w", err)
			}
			return utils.SetLastUpdatedDate(utils.NewFs(a.fs), a.conf.FeedDir, glsaTarget, time.Now().UTC())
		},
	}
	parentCmd.AddCommand(cmd)
}

func addCVECheck(parentCmd *cobra.Command, a *app) {
	var progress bool

	cmd := &cobra.Command{
		Use:   "cve-check",
		Short: "Check packages against the CVE feeds and store the matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pkgs, err := a.packages()
			if err != nil {
				return err
			}

			entries := a.advisories.CVEs()
			csafs, err := a.advisories.CSAFs()
			if err != nil {
				return xerrors.Errorf("failed to load CSAF advisories: %w", err)
			}
			entries = append(entries, csafs...)

			if last, err := utils.GetLastUpdatedDate(utils.NewFs(a.fs), a.conf.FeedDir, nvdTarget); err == nil {
				log.Debugf("NVD feeds last updated at %s", last.Format(time.RFC3339))
			}

			c := match.NewCorrelator(pkgs.Packages(),
				match.WithBlacklist(a.conf.ProductBlacklist),
				match.WithProgressBar(progress),
			)
			records := c.Correlate(entries)

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err = db.RebuildCVEMatches(records); err != nil {
				return err
			}
			if err = a.csv().CVEMatches(records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d CVE matches in %d advisories\n", len(records), len(entries))
			return nil
		},
	}
	cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar")
	parentCmd.AddCommand(cmd)
}

func addFindUnmatchedAdvisories(parentCmd *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "find-unmatched-advisories",
		Short: "List GLSAs that don't map to a package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pkgs, err := a.packages()
			if err != nil {
				return err
			}
			glsas, err := a.advisories.GLSAs()
			if err != nil {
				return err
			}

			unmatched := match.FindUnmatched(glsas, pkgs, a.conf.KnownSafeGLSA)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d advisories unmatched\n", len(unmatched), len(glsas))
			return nil
		},
	}
	parentCmd.AddCommand(cmd)
}
