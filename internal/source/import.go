package source

import (
	"context"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/raster"
	"github.com/ivlev/anim8/internal/studio"
	"github.com/ivlev/anim8/internal/thumbnail"
)

// Import renders every page of src and adds one frame per page after the
// current frame, in page order. Each page is scaled to fit the animation
// and centered on the new frame's layer. It returns the new frame ids.
func Import(ctx context.Context, store *studio.Store, src Source, dpi, workers int) ([]string, error) {
	n := src.PageCount()
	if n == 0 {
		return nil, nil
	}

	pages := make([]image.Image, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := src.RenderPage(i, dpi)
			if err != nil {
				return fmt.Errorf("render page %d: %w", i, err)
			}
			pages[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, n)
	for _, page := range pages {
		add := studio.AddFrame{AfterFrameID: store.State().CurrentFrameID}
		st := store.DispatchWith(add, func(st model.State, reg *raster.Registry) {
			if dst, ok := reg.Get(st.CurrentLayerID); ok {
				Place(dst, page)
			}
		})
		ids = append(ids, st.CurrentFrameID)
	}
	return ids, nil
}

// Place scales page to fit dst, keeping its aspect ratio, and centers it.
func Place(dst *image.RGBA, page image.Image) {
	sb := page.Bounds()
	if sb.Empty() {
		return
	}
	db := dst.Bounds()
	r := thumbnail.Fit(db.Dx(), db.Dy(), sb.Dx(), sb.Dy()).Add(db.Min)
	xdraw.CatmullRom.Scale(dst, r, page, sb, xdraw.Over, nil)
}
