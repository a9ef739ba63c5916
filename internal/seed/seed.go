// Package seed populates a store with the initial admin account and,
// optionally, demo site content. Seeding is best effort: there is no
// cross-entity transaction, so callers should inspect the returned counts
// after a partial failure.
package seed

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dawntoweb/agency/internal/auth"
	"github.com/dawntoweb/agency/internal/store"
)

type Options struct {
	AdminUsername string
	AdminPassword string
	AdminEmail    string
	Demo          bool
}

// Result counts the records created per entity.
type Result struct {
	Users    int
	Projects int
	Agents   int
	Posts    int
	Settings int
}

// Run creates the admin user (unless the username is already taken) and,
// when opts.Demo is set, starter content for the public site.
func Run(st store.Store, opts Options) (Result, error) {
	var res Result
	var errs []error

	admin, err := st.GetUserByUsername(opts.AdminUsername)
	switch {
	case err == nil:
		// Existing admin is kept as is; seeding never resets credentials.
	case errors.Is(err, store.ErrNotFound):
		hash, hashErr := auth.HashPassword(opts.AdminPassword)
		if hashErr != nil {
			return res, hashErr
		}
		admin, err = st.CreateUser(store.NewUser{
			Username: opts.AdminUsername,
			Password: hash,
			Email:    opts.AdminEmail,
		})
		if err != nil {
			return res, fmt.Errorf("creating admin user: %w", err)
		}
		res.Users++
	default:
		return res, fmt.Errorf("looking up admin user: %w", err)
	}

	if !opts.Demo {
		return res, nil
	}

	for _, p := range demoProjects() {
		if _, err := st.CreateProject(p); err != nil {
			errs = append(errs, fmt.Errorf("project %q: %w", p.Title, err))
			continue
		}
		res.Projects++
	}

	for _, a := range demoAgents() {
		if _, err := st.CreateAiAgent(a); err != nil {
			errs = append(errs, fmt.Errorf("agent %q: %w", a.Name, err))
			continue
		}
		res.Agents++
	}

	for _, p := range demoPosts(admin.ID) {
		if _, err := st.CreateBlogPost(p); err != nil {
			errs = append(errs, fmt.Errorf("post %q: %w", p.Slug, err))
			continue
		}
		res.Posts++
	}

	for key, value := range demoSettings() {
		if _, err := st.SetSetting(key, value); err != nil {
			errs = append(errs, fmt.Errorf("setting %q: %w", key, err))
			continue
		}
		res.Settings++
	}

	return res, errors.Join(errs...)
}

func demoProjects() []store.NewProject {
	return []store.NewProject{
		{
			Title:        "Bloom & Bean E-Commerce",
			Description:  "Full storefront rebuild for a specialty coffee roaster, doubling online sales in six months.",
			Category:     "e-commerce",
			Image:        "/images/portfolio/bloom-bean.jpg",
			Link:         "https://bloomandbean.example",
			Technologies: "Shopify, custom theme, analytics pipeline",
			Order:        0,
			Featured:     true,
		},
		{
			Title:        "Harborline Logistics Portal",
			Description:  "Customer portal with real-time shipment tracking and quote automation.",
			Category:     "web-app",
			Image:        "/images/portfolio/harborline.jpg",
			Technologies: "React, REST API, Mapbox",
			Order:        1,
		},
		{
			Title:       "Northside Dental Brand Refresh",
			Description: "Identity, site, and local SEO for a three-location dental practice.",
			Category:    "branding",
			Image:       "/images/portfolio/northside.jpg",
			Order:       2,
		},
	}
}

func demoAgents() []store.NewAiAgent {
	return []store.NewAiAgent{
		{
			Name:         "Concierge",
			Description:  "24/7 customer-service agent that resolves common questions and hands off the rest.",
			Icon:         "headset",
			Features:     []string{"Instant FAQ answers", "Ticket triage", "Human handoff"},
			Price:        "299",
			PriceType:    "monthly",
			Category:     "customer_service",
			Integrations: []string{"Zendesk", "Intercom", "Slack"},
			Order:        0,
			Featured:     true,
		},
		{
			Name:         "Pipeline Scout",
			Description:  "Qualifies inbound leads and drafts first-touch outreach for your sales team.",
			Icon:         "target",
			Features:     []string{"Lead scoring", "Outreach drafts", "CRM sync"},
			Price:        "499",
			PriceType:    "monthly",
			Category:     "sales",
			Integrations: []string{"HubSpot", "Salesforce"},
			Order:        1,
		},
	}
}

func demoPosts(authorID string) []store.NewBlogPost {
	return []store.NewBlogPost{
		{
			Title:    "Why Your Agency Needs an AI Front Door",
			Slug:     "ai-front-door",
			Excerpt:  "Most inbound questions are answerable in seconds. Stop making prospects wait.",
			Content:  "Every hour a lead waits for a reply, conversion odds drop. Here is how we wire an AI agent into the intake path without losing the human touch...",
			Category: "ai",
			Tags:     []string{"ai", "lead-gen"},
			Status:   store.PostStatusPublished,
			AuthorID: authorID,
		},
		{
			Title:    "2026 Web Performance Checklist",
			Slug:     "web-performance-checklist",
			Content:  "Draft notes: LCP budgets, image pipelines, edge caching...",
			Category: "engineering",
			Tags:     []string{"performance"},
			Status:   store.PostStatusDraft,
			AuthorID: authorID,
		},
	}
}

func demoSettings() map[string]json.RawMessage {
	return map[string]json.RawMessage{
		"hero": json.RawMessage(`{"headline":"From dawn to web.","subhead":"Design, build, and grow your online presence.","cta":"Start a project"}`),
		"contact": json.RawMessage(`{"email":"hello@dawntoweb.com","phone":"+1 (555) 010-4477"}`),
	}
}
