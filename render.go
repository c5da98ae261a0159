package main

import (
	"fmt"

	"github.com/IliaW/robots-api/internal/robots"
	"github.com/IliaW/robots-api/util"
	"github.com/spf13/cobra"
)

func renderCmd() *cobra.Command {
	var siteUrl string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the robots.txt produced by the config file settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := robots.Configure(cfg.Robots)
			if err != nil {
				return err
			}
			policy := rs.ResolvedPolicy()

			var sitemapUrl string
			if policy.UseSitemap && siteUrl != "" {
				baseUrl, err := util.GetBaseUrl(siteUrl)
				if err != nil {
					return fmt.Errorf("invalid --url: %w", err)
				}
				if sitemapUrl, err = util.SitemapUrl(baseUrl, policy.SitemapPath); err != nil {
					return fmt.Errorf("invalid sitemap file: %w", err)
				}
			}
			if policy.UseSitemap && siteUrl == "" {
				cmd.PrintErrln("sitemap line omitted: --url is not set")
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), robots.Render(policy, sitemapUrl))
			return err
		},
	}
	cmd.Flags().StringVar(&siteUrl, "url", "", "site url used to build the absolute sitemap url")

	return cmd
}
