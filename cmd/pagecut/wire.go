package main

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/fwojciec/pagecut"
	"github.com/fwojciec/pagecut/ahocorasick"
	"github.com/fwojciec/pagecut/chromedp"
	"github.com/fwojciec/pagecut/docx"
	"github.com/fwojciec/pagecut/douceur"
	"github.com/fwojciec/pagecut/fpdf"
	"github.com/fwojciec/pagecut/goquery"
	"github.com/fwojciec/pagecut/htmltomarkdown"
	pagecuthttp "github.com/fwojciec/pagecut/http"
	"github.com/fwojciec/pagecut/readability"
	"github.com/fwojciec/pagecut/reader"
	"github.com/fwojciec/pagecut/rod"
	pcslog "github.com/fwojciec/pagecut/slog"
	"github.com/fwojciec/pagecut/trafilatura"
	"github.com/fwojciec/pagecut/yaml"
)

// Wire builds the reading pipeline described by flags. The returned
// function releases the fetcher.
func Wire(flags *PipelineFlags, logger *slog.Logger) (pagecut.ReadingService, func(), error) {
	rules := pagecut.DefaultRules()
	if flags.Rules != "" {
		var err error
		if rules, err = yaml.LoadRules(flags.Rules); err != nil {
			return nil, nil, err
		}
	}

	extractor, err := newExtractor(flags, rules)
	if err != nil {
		return nil, nil, err
	}

	fetcher, err := newFetcher(flags, rules)
	if err != nil {
		return nil, nil, err
	}

	opts := []reader.Option{reader.WithExporters(newExporters(flags, logger)...)}
	if slices.Contains(flags.Format, "md") {
		opts = append(opts, reader.WithConverter(htmltomarkdown.NewConverter()))
	}

	service := reader.New(
		pcslog.NewLoggingFetcher(fetcher, logger),
		pcslog.NewLoggingExtractor(extractor, logger),
		goquery.NewRenderer(),
		opts...,
	)
	closeFn := func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("closing fetcher", "err", err)
		}
	}
	return service, closeFn, nil
}

func newFetcher(flags *PipelineFlags, rules *pagecut.Rules) (pagecut.Fetcher, error) {
	switch flags.Browser {
	case "chromedp":
		f, err := chromedp.NewFetcher(
			chromedp.WithFetchTimeout(flags.Timeout),
			chromedp.WithGateway(flags.Gateway, flags.GatewayPause),
			chromedp.WithInterstitials(rules),
			chromedp.WithComputedStyles(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		return f, nil
	case "http":
		return pagecuthttp.NewFetcher(
			pagecuthttp.WithTimeout(flags.Timeout),
			pagecuthttp.WithGateway(flags.Gateway, flags.GatewayPause),
		), nil
	}
	f, err := rod.NewFetcher(
		rod.WithFetchTimeout(flags.Timeout),
		rod.WithGateway(flags.Gateway, flags.GatewayPause),
		rod.WithInterstitials(rules),
		rod.WithComputedStyles(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
	}
	return f, nil
}

func newExtractor(flags *PipelineFlags, rules *pagecut.Rules) (pagecut.Extractor, error) {
	opts := []goquery.ExtractorOption{goquery.WithColorMapper(douceur.NewColorMapper())}
	switch flags.Fallback {
	case "readability":
		opts = append(opts, goquery.WithFallback(readability.NewExtractor()))
	case "trafilatura":
		opts = append(opts, goquery.WithFallback(trafilatura.NewExtractor()))
	}
	return goquery.NewExtractor(rules, ahocorasick.NewMatcher(rules.WarningPhrases), opts...)
}

func newExporters(flags *PipelineFlags, logger *slog.Logger) []pagecut.Exporter {
	var exporters []pagecut.Exporter
	if slices.Contains(flags.Format, "docx") {
		exporters = append(exporters, pcslog.NewLoggingExporter(docx.NewExporter(), logger))
	}
	if slices.Contains(flags.Format, "pdf") {
		if flags.Font == "" {
			logger.Warn("no pdf font set, non-Latin text will be lost in pdf output")
		}
		pdf := fpdf.NewExporter(fpdf.WithFont(flags.Font))
		pdf.OnFontFallback = func(err error) {
			logger.Warn("pdf font unavailable, using core font", "font", flags.Font, "err", err)
		}
		exporters = append(exporters, pcslog.NewLoggingExporter(pdf, logger))
	}
	return exporters
}
