// Package main provides the finanalyzer command line tool.
//
// finanalyzer runs the same analyses as the web server against PDF files on
// disk and prints the model's answer as text or Markdown.
//
// Usage:
//
//	finanalyzer analyze --type risk-factors report.pdf
//	finanalyzer compare --period1 FY2024 --period2 FY2023 2024.pdf 2023.pdf
//
// See --help for all available options.
package main

func main() {
	Execute()
}
