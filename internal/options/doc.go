// Package options builds typed option values from an ordered list of
// configurators and keeps them current as configuration changes.
//
// A [Pipeline] collects [Configurator]s and [ChangeTokenSource]s for one
// options type during composition. A [Monitor] is created from the pipeline
// once composition is done: [Monitor.Get] applies every configurator, in
// registration order, to a zero value and caches the result until one of the
// sources signals a change.
//
// Change notification follows a single-shot token model. A [ChangeToken]
// fires at most once; a source hands out a fresh token after every change and
// consumers re-arm on it.
package options
