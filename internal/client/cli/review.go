package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
	"github.com/dmitrijs2005/valuationdesk/internal/common"
)

func (a *App) reviewTarget(ctx context.Context, cmd string, args []string) (models.FormType, string, error) {
	if len(args) != 1 {
		fmt.Fprintf(a.out, "Usage: %s <uniqueId>\n", cmd)
		return "", "", errUsage
	}
	if id, ok := a.identity(); !ok || !id.CanReview() {
		fmt.Fprintln(a.out, "Only managers and admins can", cmd)
		return "", "", common.ErrorForbidden
	}
	form, ok := a.formOf(ctx, args[0])
	if !ok {
		fmt.Fprintln(a.out, "No such record:", args[0])
		return "", "", common.ErrorNotFound
	}
	return form, args[0], nil
}

// SetStatus approves or rejects a record.
func (a *App) SetStatus(ctx context.Context, status models.Status, args []string) error {
	cmd := "approve"
	if status == models.StatusRejected {
		cmd = "reject"
	}
	form, id, err := a.reviewTarget(ctx, cmd, args)
	if err != nil {
		return err
	}
	if err := a.api.SetStatus(ctx, form, id, status); err != nil {
		fmt.Fprintln(a.out, "Status update failed:", err)
		return err
	}
	fmt.Fprintf(a.out, "%s is now %s\n", id, status)
	a.reload(ctx)
	return nil
}

// Rework sends a record back to the engineer with comments.
func (a *App) Rework(ctx context.Context, args []string) error {
	form, id, err := a.reviewTarget(ctx, "rework", args)
	if err != nil {
		return err
	}
	comments, err := GetMultiline(a.reader, "Rework comments", a.out)
	if err != nil {
		return err
	}
	if err := a.api.RequestRework(ctx, form, id, comments); err != nil {
		fmt.Fprintln(a.out, "Rework request failed:", err)
		return err
	}
	fmt.Fprintf(a.out, "Rework requested for %s\n", id)
	a.reload(ctx)
	return nil
}
