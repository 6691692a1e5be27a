// Package curator embeds the curation pipeline in a Go program.
//
// A run filters records by eligibility and permission, ranks them with a
// named rule, orders them by rank (ties broken by ID) and returns at most
// MaxCount entries.
//
//	c, _ := curator.New(curator.WithPermissionNames("viewer", "member", "admin"))
//	res, err := c.Curate(ctx, records, curator.Criteria{
//	    Statuses:      []string{"active"},
//	    RequiredLevel: "member",
//	    Rank:          curator.Composite(curator.Weights{Score: 1, Level: 10, Recency: 5}, 72*time.Hour),
//	    MaxCount:      curator.Count(10),
//	})
package curator
