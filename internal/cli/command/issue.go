// Package command provides CLI command definitions for issuemesh-cli.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/issuemesh-go/internal/cli/connection"
	"github.com/yndnr/issuemesh-go/internal/cli/output"
	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

// IssueCommand returns the issue subcommand group.
func IssueCommand() *cli.Command {
	return &cli.Command{
		Name:    "issue",
		Aliases: []string{"issues"},
		Usage:   "List, inspect and change issues",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List issues",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show issues with this status (open, in-progress, closed)",
					},
				},
				Action: issueList,
			},
			{
				Name:      "get",
				Usage:     "Show one issue with its comments",
				ArgsUsage: "ISSUE_ID",
				Action:    issueGet,
			},
			{
				Name:  "create",
				Usage: "Create an issue",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Issue title",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Issue description",
					},
				},
				Action: issueCreate,
			},
			{
				Name:      "update",
				Usage:     "Change the title, description or status of an issue",
				ArgsUsage: "ISSUE_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "title",
						Aliases: []string{"t"},
						Usage:   "New title",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "New description",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "New status (open, in-progress, closed)",
					},
				},
				Action: issueUpdate,
			},
			{
				Name:      "comment",
				Usage:     "Add a comment to an issue",
				ArgsUsage: "ISSUE_ID TEXT...",
				Action:    issueComment,
			},
		},
	}
}

func issueList(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	var status domain.Status
	if s := c.String("status"); s != "" {
		if status, err = parseStatus(s); err != nil {
			return err
		}
	}

	conn, err := flags.connOptions()
	if err != nil {
		return err
	}

	ctx, cancel := flags.requestContext(c)
	defer cancel()

	resp, err := connection.NewHTTPClient(flags.Server, conn...).Get(ctx, "/api/v1/issues")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		NextID int64           `json:"nextId"`
		Count  int             `json:"count"`
		Issues []*domain.Issue `json:"issues"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	issues := output.Issues{}
	for _, is := range result.Issues {
		if status == "" || is.Status == status {
			issues = append(issues, is)
		}
	}

	if err := flags.Printer().Print(c.App.Writer, issues); err != nil {
		return err
	}
	if flags.Output == output.FormatTable {
		fmt.Fprintf(c.App.Writer, "\nTotal: %d issues\n", len(issues))
	}
	return nil
}

func issueGet(c *cli.Context) error {
	id, err := issueIDArg(c)
	if err != nil {
		return err
	}
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	conn, err := flags.connOptions()
	if err != nil {
		return err
	}

	ctx, cancel := flags.requestContext(c)
	defer cancel()

	resp, err := connection.NewHTTPClient(flags.Server, conn...).Get(ctx, "/api/v1/issues/"+strconv.FormatInt(id, 10))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var issue domain.Issue
	if err := connection.ParseResponse(resp, &issue); err != nil {
		return err
	}
	return flags.Printer().Print(c.App.Writer, output.IssueDetail{Issue: &issue})
}

func issueCreate(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	title := c.String("title")
	if strings.TrimSpace(title) == "" {
		return errors.New("title must not be empty")
	}

	conn, err := flags.connOptions()
	if err != nil {
		return err
	}

	ctx, cancel := flags.requestContext(c)
	defer cancel()

	ws, err := connection.DialWS(ctx, flags.Server, conn...)
	if err != nil {
		return err
	}
	defer ws.Close()

	req := connection.CreateIssue{
		Title:       title,
		Description: c.String("description"),
		CreatedBy:   flags.User,
	}
	if err := ws.Send(ctx, connection.RequestCreateIssue, req); err != nil {
		return err
	}

	// Ids are never reused, so ours is at least the next id seen on connect.
	minID := ws.Init().NextID
	creator := domain.ActorOrDefault(flags.User)
	ev, err := ws.Await(ctx, func(ev domain.Event) bool {
		return ev.Type == domain.EventIssueCreated && ev.Issue != nil &&
			ev.Issue.ID >= minID && ev.Issue.Title == title && ev.Issue.CreatedBy == creator
	})
	if err != nil {
		return err
	}

	return printIssue(c, flags, ev.Issue, "created")
}

func issueUpdate(c *cli.Context) error {
	id, err := issueIDArg(c)
	if err != nil {
		return err
	}
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	var fields domain.IssueFields
	if c.IsSet("title") {
		title := c.String("title")
		fields.Title = &title
	}
	if c.IsSet("description") {
		description := c.String("description")
		fields.Description = &description
	}
	if c.IsSet("status") {
		status, err := parseStatus(c.String("status"))
		if err != nil {
			return err
		}
		fields.Status = &status
	}
	if fields.Title == nil && fields.Description == nil && fields.Status == nil {
		return errors.New("nothing to update: set --title, --description or --status")
	}

	conn, err := flags.connOptions()
	if err != nil {
		return err
	}

	ctx, cancel := flags.requestContext(c)
	defer cancel()

	ws, err := connection.DialWS(ctx, flags.Server, conn...)
	if err != nil {
		return err
	}
	defer ws.Close()

	req := connection.UpdateIssue{ID: id, Fields: fields, UpdatedBy: flags.User}
	if err := ws.Send(ctx, connection.RequestUpdateIssue, req); err != nil {
		return err
	}

	ev, err := ws.Await(ctx, func(ev domain.Event) bool {
		return ev.Type == domain.EventIssueUpdated && ev.Issue != nil && ev.Issue.ID == id
	})
	if err != nil {
		return err
	}

	return printIssue(c, flags, ev.Issue, "updated")
}

func issueComment(c *cli.Context) error {
	id, err := issueIDArg(c)
	if err != nil {
		return err
	}
	text := strings.Join(c.Args().Tail(), " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("comment text required")
	}
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	conn, err := flags.connOptions()
	if err != nil {
		return err
	}

	ctx, cancel := flags.requestContext(c)
	defer cancel()

	ws, err := connection.DialWS(ctx, flags.Server, conn...)
	if err != nil {
		return err
	}
	defer ws.Close()

	var req connection.AddComment
	req.ID = id
	req.Comment.Author = flags.User
	req.Comment.Text = text
	if err := ws.Send(ctx, connection.RequestAddComment, req); err != nil {
		return err
	}

	author := domain.ActorOrDefault(flags.User)
	ev, err := ws.Await(ctx, func(ev domain.Event) bool {
		return ev.Type == domain.EventCommentAdded && ev.IssueID == id && ev.Comment != nil &&
			ev.Comment.Author == author && ev.Comment.Text == text
	})
	if err != nil {
		return err
	}

	if flags.Output == output.FormatTable {
		_, err := fmt.Fprintf(c.App.Writer, "Comment added to issue #%d.\n", id)
		return err
	}
	return flags.Printer().Print(c.App.Writer, ev.Comment)
}

func printIssue(c *cli.Context, flags *GlobalFlags, issue *domain.Issue, verb string) error {
	if flags.Output == output.FormatTable {
		fmt.Fprintf(c.App.Writer, "Issue #%d %s.\n\n", issue.ID, verb)
	}
	return flags.Printer().Print(c.App.Writer, output.IssueDetail{Issue: issue})
}

func issueIDArg(c *cli.Context) (int64, error) {
	arg := c.Args().First()
	if arg == "" {
		return 0, errors.New("issue ID required")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid issue ID %q", arg)
	}
	return id, nil
}

// parseStatus accepts the wire values and their lowercase, dashed or
// underscored spellings.
func parseStatus(s string) (domain.Status, error) {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range domain.Statuses {
		if strings.ToLower(string(st)) == norm {
			return st, nil
		}
	}

	names := make([]string, len(domain.Statuses))
	for i, st := range domain.Statuses {
		names[i] = strings.ReplaceAll(strings.ToLower(string(st)), " ", "-")
	}
	return "", fmt.Errorf("unknown status %q (want %s)", s, strings.Join(names, ", "))
}
