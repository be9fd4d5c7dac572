package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/omsapp/tag-server/internal/domain"
	"github.com/omsapp/tag-server/internal/i18n"
	"github.com/omsapp/tag-server/internal/service"
)

// seedFile is the YAML layout accepted by the seed command.
//
//	account: 1
//	tags:
//	  - title: Urgent
//	    color: "#ff0000"
//	    language: en
//	    localizations:
//	      de: Dringend
type seedFile struct {
	Account int64     `yaml:"account"`
	Tags    []seedTag `yaml:"tags"`
}

type seedTag struct {
	Title         string            `yaml:"title"`
	Color         string            `yaml:"color"`
	Icon          string            `yaml:"icon"`
	Language      string            `yaml:"language"`
	Localizations map[string]string `yaml:"localizations"`
}

func parseSeedFile(data []byte) (*seedFile, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if f.Account <= 0 {
		f.Account = 1
	}
	return &f, nil
}

func newSeedCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Bulk-create tags with localizations from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0]) //#nosec G304 -- seed file path is user input by design
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			file, err := parseSeedFile(data)
			if err != nil {
				return err
			}

			return opts.withContainer(func(injector do.Injector) error {
				tags, err := do.Invoke[*service.TagService](injector)
				if err != nil {
					return err
				}

				created, err := seed(cmd.Context(), tags, file)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d tags\n", created)
				return err
			})
		},
	}
}

// seed creates every tag in the file, stopping at the first failure.
func seed(ctx context.Context, tags *service.TagService, file *seedFile) (int, error) {
	account := domain.Account{ID: file.Account}

	for i, st := range file.Tags {
		primary := st.Language
		if primary == "" {
			primary = i18n.DefaultLanguage
		}
		tag, err := tags.Create(ctx, account, primary, service.CreateTagRequest{
			Title:    st.Title,
			Color:    st.Color,
			Icon:     st.Icon,
			Language: primary,
		})
		if err != nil {
			return i, fmt.Errorf("create tag %q: %w", st.Title, err)
		}

		languages := make([]string, 0, len(st.Localizations))
		for lang := range st.Localizations {
			if lang == primary {
				continue
			}
			languages = append(languages, lang)
		}
		slices.Sort(languages)

		for _, lang := range languages {
			if _, err := tags.CreateL11n(ctx, account, lang, service.CreateL11nRequest{
				TagID:    tag.ID,
				Title:    st.Localizations[lang],
				Language: lang,
			}); err != nil {
				return i, fmt.Errorf("localize tag %q in %s: %w", st.Title, lang, err)
			}
		}
	}
	return len(file.Tags), nil
}
