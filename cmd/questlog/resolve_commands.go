package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newHLTBCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "hltb <title>",
		Short: "Resolve a title's main-story completion time",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := ctx.ensureService()
			if err != nil {
				return err
			}

			result, err := service.CompletionTime(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Hours == nil {
				fmt.Fprintf(out, "No completion time found (source: %s)\n", result.Source)
				return nil
			}
			fmt.Fprintf(out, "Main story: %.1f hours (source: %s)\n", *result.Hours, result.Source)
			return nil
		},
	}
}

func newScoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "score <title>",
		Short: "Resolve a title's aggregated critic score",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := ctx.ensureService()
			if err != nil {
				return err
			}

			score, err := service.CriticScore(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if score == nil {
				fmt.Fprintln(out, "No critic score found")
				return nil
			}
			fmt.Fprintf(out, "Top critic score: %.1f\n", *score)
			return nil
		},
	}
}

func newPriceCommand(ctx *commandContext) *cobra.Command {
	var regionFlag string

	cmd := &cobra.Command{
		Use:   "price <appid>",
		Short: "Look up a Steam app's current store price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid app id %q: %w", args[0], err)
			}

			service, err := ctx.ensureService()
			if err != nil {
				return err
			}

			region := regionFlag
			if region == "" {
				if cfg, err := ctx.ensureConfig(); err == nil {
					region = cfg.Steam.Region
				}
			}

			price, err := service.Price(cmd.Context(), uint32(appID), region)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if price == nil {
				fmt.Fprintln(out, "No price available")
				return nil
			}
			fmt.Fprintf(out, "Price: %.2f %s\n", price.Amount, price.Currency)
			return nil
		},
	}

	cmd.Flags().StringVar(&regionFlag, "region", "", "Two-letter store region (defaults to the configured region)")
	return cmd
}
