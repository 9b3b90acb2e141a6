// Package report measures how many key comparisons a lookup costs as a tree
// grows and charts the result.
package report

import (
	"fmt"
	"math/rand"

	"btreestore/btree"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// DefaultSizes are the tree sizes sampled when the caller has no preference.
var DefaultSizes = []int{100, 500, 1000, 5000, 10000, 50000, 100000}

type Point struct {
	Records        int
	Height         int
	AvgComparisons float64
}

type Series struct {
	Name   string
	Order  int
	Points []Point
}

// Measure builds one tree of the given order per size, inserting distinct keys
// in random order, and averages the comparisons of probes lookups of keys
// present in the tree.
func Measure(order int, sizes []int, probes int, src rand.Source) (Series, error) {
	if probes <= 0 {
		return Series{}, errors.Newf("report: probes must be positive, got %d", probes)
	}
	rnd := rand.New(src)
	s := Series{Name: fmt.Sprintf("t=%d", order), Order: order}

	for _, size := range sizes {
		if size <= 0 {
			return Series{}, errors.Newf("report: size must be positive, got %d", size)
		}
		tree, err := btree.NewBTree(order)
		if err != nil {
			return Series{}, err
		}
		keys := rnd.Perm(size)
		for _, k := range keys {
			tree.Insert(int64(k), "")
		}

		total := 0
		for i := 0; i < probes; i++ {
			res, found := tree.Search(int64(keys[rnd.Intn(size)]))
			if !found {
				return Series{}, errors.AssertionFailedf("report: inserted key missing from t=%d tree of %d", order, size)
			}
			total += res.Comparisons
		}

		s.Points = append(s.Points, Point{
			Records:        size,
			Height:         tree.Height(),
			AvgComparisons: float64(total) / float64(probes),
		})
	}
	return s, nil
}

// Plot draws one line per series and saves the chart; the format follows the
// file extension of path (png, svg, pdf, ...).
func Plot(path string, series ...Series) error {
	p := plot.New()
	p.Title.Text = "B-tree lookup cost"
	p.X.Label.Text = "records"
	p.Y.Label.Text = "average key comparisons"
	p.Add(plotter.NewGrid())

	for i, s := range series {
		pts := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			pts[j].X = float64(pt.Records)
			pts[j].Y = pt.AvgComparisons
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return errors.Wrapf(err, "report: series %s", s.Name)
		}
		line.Color = plotutil.Color(i)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(s.Name, line, points)
	}

	return errors.Wrapf(p.Save(8*vg.Inch, 5*vg.Inch, path), "report: save %s", path)
}
