package markdown

import (
	"bytes"
	"fmt"
	"maps"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-courses/pkg/interfaces"
)

// ParseFrontMatter splits source into its metadata block and Markdown body.
// A body without a front matter block yields empty metadata and the source
// unchanged.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return meta.toFrontMatter(), body, nil
}

type frontMatterEnvelope struct {
	Title      string         `yaml:"title"`
	Summary    string         `yaml:"summary"`
	Tags       []string       `yaml:"tags"`
	Author     string         `yaml:"author"`
	YouTubeURL string         `yaml:"youtube"`
	Thumbnail  string         `yaml:"thumbnail"`
	Date       time.Time      `yaml:"date"`
	Draft      bool           `yaml:"draft"`
	Custom     map[string]any `yaml:",inline"`
}

func (env frontMatterEnvelope) toFrontMatter() interfaces.FrontMatter {
	custom := maps.Clone(env.Custom)
	if custom == nil {
		custom = map[string]any{}
	}
	return interfaces.FrontMatter{
		Title:      env.Title,
		Summary:    env.Summary,
		Tags:       append([]string(nil), env.Tags...),
		Author:     env.Author,
		YouTubeURL: env.YouTubeURL,
		Thumbnail:  env.Thumbnail,
		Date:       env.Date,
		Draft:      env.Draft,
		Custom:     custom,
	}
}
