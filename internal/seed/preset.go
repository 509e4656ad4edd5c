package seed

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"hotorflop/internal/audience"
	"hotorflop/internal/models"
	"hotorflop/internal/tally"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Preset is a hand-written scenario:
//
//	users:
//	  - username: alice
//	    admin: true
//	  - username: bob
//	follows:
//	  - {from: bob, to: alice}
//	  - {from: alice, to: bob, close: true}
//	posts:
//	  - author: alice
//	    title: Green jacket
//	    audience: closeFriends
//	    votes: {bob: yes}
type Preset struct {
	Users   []PresetUser   `yaml:"users"`
	Follows []PresetFollow `yaml:"follows"`
	Posts   []PresetPost   `yaml:"posts"`
}

type PresetUser struct {
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
	Admin    bool   `yaml:"admin"`
}

type PresetFollow struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Close bool   `yaml:"close"`
}

type PresetPost struct {
	Author      string            `yaml:"author"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Audience    string            `yaml:"audience"`
	Price       *float64          `yaml:"price"`
	Votes       map[string]string `yaml:"votes"`
	Comments    []PresetComment   `yaml:"comments"`
}

type PresetComment struct {
	User    string `yaml:"user"`
	Content string `yaml:"content"`
}

// LoadPreset reads a preset file.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePreset(data)
}

// ParsePreset decodes and validates a preset. Unknown keys are rejected.
func ParsePreset(data []byte) (*Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse preset: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Preset) validate() error {
	known := make(map[string]bool, len(p.Users))
	for _, u := range p.Users {
		if u.Username == "" {
			return fmt.Errorf("preset user without username")
		}
		if known[u.Username] {
			return fmt.Errorf("preset user %q listed twice", u.Username)
		}
		known[u.Username] = true
	}
	ref := func(what, name string) error {
		if !known[name] {
			return fmt.Errorf("%s refers to unknown user %q", what, name)
		}
		return nil
	}

	for _, f := range p.Follows {
		if err := ref("follow", f.From); err != nil {
			return err
		}
		if err := ref("follow", f.To); err != nil {
			return err
		}
		if f.From == f.To {
			return fmt.Errorf("user %q cannot follow themself", f.From)
		}
	}

	for i, post := range p.Posts {
		if err := ref("post author", post.Author); err != nil {
			return err
		}
		if post.Title == "" {
			return fmt.Errorf("post %d has no title", i)
		}
		if _, err := audience.Parse(post.Audience); err != nil {
			return fmt.Errorf("post %q: %w", post.Title, err)
		}
		for voter, raw := range post.Votes {
			if err := ref("vote", voter); err != nil {
				return err
			}
			if voter == post.Author {
				return fmt.Errorf("post %q: author cannot vote on their own post", post.Title)
			}
			if _, err := tally.ParseChoice(raw); err != nil {
				return fmt.Errorf("post %q: vote by %q: %w", post.Title, voter, err)
			}
		}
		for _, c := range post.Comments {
			if err := ref("comment", c.User); err != nil {
				return err
			}
		}
	}
	return nil
}

// Apply writes the preset to db.
func (p *Preset) Apply(ctx context.Context, db *gorm.DB) (Summary, error) {
	var sum Summary
	f := NewFactory(db, 0)

	users := make(map[string]*models.User, len(p.Users))
	for _, pu := range p.Users {
		u, err := f.CreateUser(ctx, func(u *models.User) {
			u.Username = pu.Username
			u.Email = pu.Username + "@example.com"
			u.IsAdmin = pu.Admin
			if pu.Name != "" {
				u.Name = pu.Name
			}
		})
		if err != nil {
			return sum, fmt.Errorf("create user %q: %w", pu.Username, err)
		}
		users[pu.Username] = u
		sum.Users++
	}

	for _, pf := range p.Follows {
		if err := f.Follow(ctx, users[pf.From], users[pf.To], pf.Close); err != nil {
			return sum, fmt.Errorf("follow %s -> %s: %w", pf.From, pf.To, err)
		}
		sum.Relationships++
	}

	for _, pp := range p.Posts {
		a, _ := audience.Parse(pp.Audience)
		post, err := f.CreatePost(ctx, users[pp.Author], func(post *models.Post) {
			post.Title = pp.Title
			post.Description = pp.Description
			post.Audience = a
			post.Price = pp.Price
		})
		if err != nil {
			return sum, fmt.Errorf("create post %q: %w", pp.Title, err)
		}
		sum.Posts++

		for voter, raw := range pp.Votes {
			choice, _ := tally.ParseChoice(raw)
			applied, err := f.Vote(ctx, users[voter], post, choice)
			if err != nil {
				return sum, fmt.Errorf("vote by %q on %q: %w", voter, pp.Title, err)
			}
			if applied {
				sum.Votes++
			}
		}

		for _, pc := range pp.Comments {
			if _, err := f.CreateComment(ctx, users[pc.User], post, func(c *models.Comment) {
				if pc.Content != "" {
					c.Content = pc.Content
				}
			}); err != nil {
				return sum, fmt.Errorf("comment by %q: %w", pc.User, err)
			}
			sum.Comments++
		}
	}
	return sum, nil
}
