// Package resolvers provides the concrete license detection strategies and
// builds an ordered strategy list from configuration.
package resolvers

import (
	"context"
	"regexp"
	"strings"

	"github.com/arc-language/pkglicense/pkg/dpkg"
	"github.com/arc-language/pkglicense/pkg/license"
)

// commonLicenseRef matches references such as
// "/usr/share/common-licenses/GPL-2" in free-form copyright files
var commonLicenseRef = regexp.MustCompile(regexp.QuoteMeta(dpkg.DefaultCommonLicensesDir) + `/([A-Za-z0-9][A-Za-z0-9.+_-]*[A-Za-z0-9+])`)

// licensePhrases maps characteristic license wording to a short name.
// Phrases are lower-case and compared against whitespace-collapsed text.
var licensePhrases = []struct {
	phrase string
	name   string
}{
	{"permission is hereby granted, free of charge, to any person obtaining", "MIT"},
	{"apache license, version 2.0", "Apache-2.0"},
	{"apache license version 2.0", "Apache-2.0"},
	{"mozilla public license version 2.0", "MPL-2.0"},
	{"mozilla public license, v. 2.0", "MPL-2.0"},
	{"permission to use, copy, modify, and/or distribute this software for any purpose", "ISC"},
	{"redistribution and use in source and binary forms", "BSD"},
	{"this is free and unencumbered software released into the public domain", "Unlicense"},
}

// CommonLicenses scans a free-form copyright file for references to
// /usr/share/common-licenses and for well-known license wording
type CommonLicenses struct {
	ID     string
	DocDir string
}

// NewCommonLicenses creates a common-licenses strategy rooted at docDir
func NewCommonLicenses(docDir string) *CommonLicenses {
	if docDir == "" {
		docDir = dpkg.DefaultDocDir
	}
	return &CommonLicenses{ID: TypeCommonLicenses, DocDir: docDir}
}

// Name returns the strategy identifier
func (s *CommonLicenses) Name() string {
	return s.ID
}

// Probe reads the copyright file and reports every license it mentions,
// in order of first appearance
func (s *CommonLicenses) Probe(_ context.Context, pkg string) (string, bool, error) {
	if err := license.ValidateName(pkg); err != nil {
		return "", false, err
	}

	text, ok, err := readCopyright(s.DocDir, pkg)
	if err != nil || !ok {
		return "", false, err
	}

	names := MentionedLicenses(text)
	if len(names) == 0 {
		return "", false, nil
	}
	return strings.Join(names, " and "), true, nil
}

// MentionedLicenses lists the distinct licenses referenced by text.
// common-licenses references come first, then recognised wording.
func MentionedLicenses(text string) []string {
	var names []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, m := range commonLicenseRef.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}

	flat := strings.ToLower(license.Normalize(text))
	for _, p := range licensePhrases {
		if strings.Contains(flat, p.phrase) {
			add(p.name)
		}
	}
	return names
}
