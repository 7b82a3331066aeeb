// Package catalog loads product catalogs and ground truth from CSV and
// produces the canonical serialized text every downstream stage works
// with. Catalog files are decoded as Latin-1 on a best-effort basis and
// the loader treats "NA" and "null" as absent values, so sparse or
// messy rows never fail a run.
package catalog
