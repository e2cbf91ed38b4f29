package catalog

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/janelia-flyem/ngportal/portal"
	"gocloud.dev/blob"
	"golang.org/x/sync/errgroup"

	// bucket drivers selectable by URL scheme
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// DefaultConcurrency is the number of objects read at once when loading a bucket.
const DefaultConcurrency = 8

// Catalog is an immutable set of datasets keyed by name.
type Catalog struct {
	datasets []*Dataset
	byName   map[string]*Dataset
}

// New returns a catalog of the given datasets, which must have unique names.
// Datasets are listed in name order.
func New(datasets ...*Dataset) (*Catalog, error) {
	c := &Catalog{
		datasets: make([]*Dataset, 0, len(datasets)),
		byName:   make(map[string]*Dataset, len(datasets)),
	}
	for _, ds := range datasets {
		if ds == nil {
			continue
		}
		if _, dup := c.byName[ds.Name]; dup {
			return nil, fmt.Errorf("duplicate dataset %q in catalog", ds.Name)
		}
		c.byName[ds.Name] = ds
		c.datasets = append(c.datasets, ds)
	}
	sort.Slice(c.datasets, func(i, j int) bool {
		return c.datasets[i].Name < c.datasets[j].Name
	})
	return c, nil
}

// Dataset returns the named dataset.
func (c *Catalog) Dataset(name string) (*Dataset, bool) {
	ds, found := c.byName[name]
	return ds, found
}

// Datasets returns all datasets in name order.
func (c *Catalog) Datasets() []*Dataset {
	out := make([]*Dataset, len(c.datasets))
	copy(out, c.datasets)
	return out
}

func (c *Catalog) Len() int {
	return len(c.datasets)
}

// Open loads a catalog from a bucket URL such as "file:///data/catalog",
// "gs://bucket?prefix=datasets/" or "mem://".
func Open(ctx context.Context, bucketURL string, concurrency int) (*Catalog, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("can't open catalog bucket %q: %v", bucketURL, err)
	}
	defer func() {
		if err := bucket.Close(); err != nil {
			portal.Errorf("error closing catalog bucket %q: %v\n", bucketURL, err)
		}
	}()
	return Load(ctx, bucket, concurrency)
}

// Load reads every dataset description object in the bucket.  Objects whose
// extension isn't a known format are skipped.  Any bad description fails the load.
func Load(ctx context.Context, bucket *blob.Bucket, concurrency int) (*Catalog, error) {
	timedLog := portal.NewTimeLog()
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var keys []string
	iter := bucket.List(nil)
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("can't list catalog bucket: %v", err)
		}
		if obj.IsDir {
			continue
		}
		if _, ok := FormatForKey(obj.Key); !ok {
			portal.Debugf("skipping catalog object %q\n", obj.Key)
			continue
		}
		keys = append(keys, obj.Key)
	}

	timedLog.Debugf("listed %d dataset objects in catalog bucket", len(keys))

	datasets := make([]*Dataset, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			data, err := bucket.ReadAll(gctx, key)
			if err != nil {
				return fmt.Errorf("can't read catalog object %q: %v", key, err)
			}
			format, _ := FormatForKey(key)
			ds, err := Decode(format, data)
			if err != nil {
				return fmt.Errorf("catalog object %q: %w", key, err)
			}
			portal.Debugf("read dataset %q from %q (%s)\n", ds.Name, key, humanize.Bytes(uint64(len(data))))
			datasets[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c, err := New(datasets...)
	if err != nil {
		return nil, err
	}
	timedLog.Infof("loaded %d datasets from %d catalog objects", c.Len(), len(keys))
	return c, nil
}
