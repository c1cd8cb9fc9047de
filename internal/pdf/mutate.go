package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const helveticaResource = "Helv"

// pdfConfig returns the relaxed-validation configuration used for every
// pdfcpu read. Real-world vault documents frequently fail strict validation.
func pdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// readMutableContext loads a PDF into a pdfcpu context ready for mutation.
func readMutableContext(absPath string) (*model.Context, error) {
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	ctx, err := api.ReadContext(file, pdfConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx, nil
}

// checkPageRect validates that the 0-based page exists and the rectangle lies
// within its media box. Runs before any byte of the file is touched.
func checkPageRect(ctx *model.Context, page int, rect Rect) error {
	if page < 0 || page >= ctx.PageCount {
		return fmt.Errorf("%w: page %d, document has %d pages", ErrPageOutOfRange, page, ctx.PageCount)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return fmt.Errorf("failed to resolve page dimensions: %w", err)
	}
	if page >= len(dims) {
		return fmt.Errorf("%w: page %d", ErrPageOutOfRange, page)
	}

	d := dims[page]
	if rect.X < 0 || rect.Y < 0 || rect.Width <= 0 || rect.Height <= 0 ||
		rect.X+rect.Width > d.Width || rect.Y+rect.Height > d.Height {
		return fmt.Errorf("%w: rect (%.1f,%.1f %.1fx%.1f) on page %d (%.1fx%.1f)",
			ErrRectOutOfPage, rect.X, rect.Y, rect.Width, rect.Height, page, d.Width, d.Height)
	}
	return nil
}

// appendPageContent adds a new content stream after the page's existing
// streams so drawn marks render on top of the original content.
func appendPageContent(ctx *model.Context, page int, content []byte) error {
	pageDict, _, _, err := ctx.PageDict(page+1, false)
	if err != nil {
		return fmt.Errorf("failed to load page dict: %w", err)
	}
	if pageDict == nil {
		return fmt.Errorf("%w: page %d", ErrPageOutOfRange, page)
	}

	sd, err := ctx.NewStreamDictForBuf(content)
	if err != nil {
		return fmt.Errorf("failed to build content stream: %w", err)
	}
	if err := sd.Encode(); err != nil {
		return fmt.Errorf("failed to encode content stream: %w", err)
	}
	ir, err := ctx.IndRefForNewObject(*sd)
	if err != nil {
		return fmt.Errorf("failed to register content stream: %w", err)
	}

	existing, found := pageDict.Find("Contents")
	if !found {
		pageDict.Insert("Contents", *ir)
		return nil
	}

	switch obj := existing.(type) {
	case types.Array:
		pageDict.Update("Contents", append(obj, *ir))
	default:
		pageDict.Update("Contents", types.Array{existing, *ir})
	}
	return nil
}

// pageResources returns the page's own resource dictionary, materializing one
// from the inherited attributes when the page dict carries none.
func pageResources(ctx *model.Context, page int) (types.Dict, error) {
	pageDict, _, inhAttrs, err := ctx.PageDict(page+1, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load page dict: %w", err)
	}
	if pageDict == nil {
		return nil, fmt.Errorf("%w: page %d", ErrPageOutOfRange, page)
	}

	if obj, found := pageDict.Find("Resources"); found {
		res, err := ctx.DereferenceDict(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to dereference resources: %w", err)
		}
		if res != nil {
			return res, nil
		}
	}

	res := types.Dict{}
	if inhAttrs != nil && inhAttrs.Resources != nil {
		for k, v := range inhAttrs.Resources {
			res[k] = v
		}
	}
	pageDict.Insert("Resources", res)
	return res, nil
}

// resourceCategory returns the named sub-dictionary of a resource dict,
// creating it when absent.
func resourceCategory(ctx *model.Context, res types.Dict, name string) (types.Dict, error) {
	if obj, found := res.Find(name); found {
		d, err := ctx.DereferenceDict(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to dereference %s: %w", name, err)
		}
		if d != nil {
			return d, nil
		}
	}
	d := types.Dict{}
	res.Insert(name, d)
	return d, nil
}

// installExtGState registers a transparency graphics state on the page and
// returns its resource name. Alpha applies to both fills and strokes.
func installExtGState(ctx *model.Context, page int, alpha float64) (string, error) {
	res, err := pageResources(ctx, page)
	if err != nil {
		return "", err
	}
	gstates, err := resourceCategory(ctx, res, "ExtGState")
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("GSa%d", int(alpha*100))
	if _, found := gstates.Find(name); !found {
		gstates.Insert(name, types.Dict{
			"Type": types.Name("ExtGState"),
			"ca":   types.Float(alpha),
			"CA":   types.Float(alpha),
		})
	}
	return name, nil
}

// installHelvetica ensures the built-in Helvetica font is addressable from
// the page's content streams and returns its resource name.
func installHelvetica(ctx *model.Context, page int) (string, error) {
	res, err := pageResources(ctx, page)
	if err != nil {
		return "", err
	}
	fonts, err := resourceCategory(ctx, res, "Font")
	if err != nil {
		return "", err
	}

	if _, found := fonts.Find(helveticaResource); !found {
		fonts.Insert(helveticaResource, types.Dict{
			"Type":     types.Name("Font"),
			"Subtype":  types.Name("Type1"),
			"BaseFont": types.Name("Helvetica"),
			"Encoding": types.Name("WinAnsiEncoding"),
		})
	}
	return helveticaResource, nil
}

// writeContextAtomic persists the mutated context next to the target and
// renames it into place so readers never observe a half-written file.
func writeContextAtomic(ctx *model.Context, absPath string) error {
	tmp := filepath.Join(filepath.Dir(absPath), "."+filepath.Base(absPath)+".tmp")
	if err := api.WriteContextFile(ctx, tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := os.Rename(tmp, absPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace PDF: %w", err)
	}
	return nil
}
