package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
	"github.com/dmitrijs2005/valuationdesk/internal/client/repositories/exports"
	"github.com/dmitrijs2005/valuationdesk/internal/netx"
	"github.com/dmitrijs2005/valuationdesk/internal/report"
	"github.com/dmitrijs2005/valuationdesk/internal/report/export"
	"github.com/dmitrijs2005/valuationdesk/internal/report/render"
)

// Export renders the report of one record into the output directory:
//
//	export <uniqueId> [pdf|docx] [archive]
//
// With archive the file is also uploaded to the export archive.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: export <uniqueId> [pdf|docx] [archive]")
		return errUsage
	}
	id, ext, archive := args[0], export.ExtPDF, false
	for _, arg := range args[1:] {
		switch arg {
		case export.ExtPDF, export.ExtDOCX:
			ext = arg
		case "archive":
			archive = true
		default:
			fmt.Fprintln(a.out, "Unknown export option:", arg)
			return errUsage
		}
	}

	rec, ok := findRecord(a.recordsOrLoad(ctx), id)
	if !ok {
		fmt.Fprintln(a.out, "No such record:", id)
		return errUsage
	}
	if a.online() {
		full, err := a.api.Record(ctx, rec.FormType(), id)
		if err != nil {
			a.log.Warn(ctx, "full record unavailable, exporting list data", "uniqueId", id, "error", err)
		} else {
			rec = full
		}
	}

	now := a.now()
	doc, _ := report.Build(rec, render.Options{
		ValuerName:        a.config.ValuerName,
		ValuerTitle:       a.config.ValuerTitle,
		ValuerLicense:     a.config.ValuerLicense,
		RealisablePercent: a.config.RealisablePercent,
		DistressPercent:   a.config.DistressPercent,
	}, now)

	path, st, err := a.exporter.WriteFile(ctx, doc, a.config.OutputDir, ext, now)
	if err != nil {
		a.log.Error(ctx, "export failed", "uniqueId", id, "format", ext, "error", err)
		fmt.Fprintln(a.out, "Export failed:", err)
		return err
	}

	if err := a.history.Add(ctx, &exports.Export{
		UniqueID:  id,
		FormType:  string(rec.FormType()),
		Format:    ext,
		Path:      path,
		Pages:     max(st.PDFPages, st.LogicalPages),
		Images:    st.Images,
		Dropped:   st.Dropped,
		CreatedAt: now,
	}); err != nil {
		a.log.Warn(ctx, "export history not saved", "error", err)
	}

	fmt.Fprintf(a.out, "Saved %s (%d pages, %d images", path, max(st.PDFPages, st.LogicalPages), st.Images)
	if st.Dropped > 0 {
		fmt.Fprintf(a.out, ", %d unreadable images skipped", st.Dropped)
	}
	fmt.Fprintln(a.out, ")")

	if archive {
		key, err := a.upload(ctx, path)
		if err != nil {
			fmt.Fprintln(a.out, "Archive upload failed:", err)
			return err
		}
		fmt.Fprintln(a.out, "Archived as", key)
	}
	return nil
}

// upload puts the file at path to a presigned archive URL and returns the
// archive key.
func (a *App) upload(ctx context.Context, path string) (string, error) {
	p, err := a.api.PresignExport(ctx, filepath.Base(path))
	if err != nil {
		return "", err
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if err := netx.UploadToPresignedURL(ctx, a.http, p.URL, contentType(path), body); err != nil {
		return "", err
	}
	a.log.Info(ctx, "export archived", "key", p.Key, "bytes", len(body))
	return p.Key, nil
}

func contentType(path string) string {
	switch filepath.Ext(path) {
	case "." + export.ExtPDF:
		return "application/pdf"
	case "." + export.ExtDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// History lists the local exports of one record, or the latest ones.
func (a *App) History(ctx context.Context, args []string) error {
	var (
		list []exports.Export
		err  error
	)
	if len(args) > 0 {
		list, err = a.history.ByUniqueID(ctx, args[0])
	} else {
		list, err = a.history.Recent(ctx, 20)
	}
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No exports yet")
		return nil
	}
	for _, e := range list {
		fmt.Fprintf(a.out, "%s  %-4s  %s  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Format, e.UniqueID, e.Path)
	}
	return nil
}

// formOf returns the form type of a loaded record.
func (a *App) formOf(ctx context.Context, uniqueID string) (models.FormType, bool) {
	r, ok := findRecord(a.recordsOrLoad(ctx), uniqueID)
	if !ok {
		return "", false
	}
	return r.FormType(), true
}
