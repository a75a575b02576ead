// Package preflight provides readiness checks for the external tools and
// filesystem paths a pipeline run depends on.
//
// The pipeline calls RunAll before probing so a missing ffmpeg or an
// unwritable output directory fails fast instead of partway through an
// export. The CLI check command uses the same functions to display tool
// health.
package preflight
