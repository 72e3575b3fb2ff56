/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Comcast/rulebind/util"
)

var inlinePattern = regexp.MustCompile(`%inline *\("([^"]*)"\)`)

// Inline replaces '%inline("NAME")' with f(NAME).
//
// Every line of the replacement after the first is indented like the
// line holding the directive, so a declaration can say
//
//	code: |
//	  %inline("tooHot.js")
//
// and get a proper YAML block.
func Inline(bs []byte, f func(string) ([]byte, error)) ([]byte, error) {
	var (
		acc  bytes.Buffer
		last int
	)
	for _, loc := range inlinePattern.FindAllSubmatchIndex(bs, -1) {
		start, end := loc[0], loc[1]
		name := string(bs[loc[2]:loc[3]])

		acc.Write(bs[last:start])
		last = end

		replacement, err := f(name)
		if err != nil {
			return nil, err
		}
		util.Logf("Inline %s (%d bytes)", name, len(replacement))

		indent := lineIndent(bs, start)
		lines := strings.Split(strings.TrimRight(string(replacement), "\n"), "\n")
		for i, line := range lines {
			if 0 < i {
				acc.WriteString("\n")
				if line != "" {
					acc.WriteString(indent)
				}
			}
			acc.WriteString(line)
		}
	}
	acc.Write(bs[last:])

	return acc.Bytes(), nil
}

// lineIndent returns the leading whitespace of the line containing
// position i.
func lineIndent(bs []byte, i int) string {
	lineStart := bytes.LastIndexByte(bs[:i], '\n') + 1
	j := lineStart
	for j < i && (bs[j] == ' ' || bs[j] == '\t') {
		j++
	}
	return string(bs[lineStart:j])
}

// DirInliner returns a function for Inline that reads NAME relative
// to dir.  Names that escape dir are rejected.
func DirInliner(dir string) func(string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		filename := filepath.Clean(name)
		if strings.HasPrefix(filename, "..") || filepath.IsAbs(filename) {
			return nil, fmt.Errorf("inline '%s' is outside of %s", name, dir)
		}
		return os.ReadFile(filepath.Join(dir, filename))
	}
}

// ReadFileWithInlines is a replacement for os.ReadFile that
// Inline()s relative to the file's directory.
func ReadFileWithInlines(filename string) ([]byte, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Inline(bs, DirInliner(filepath.Dir(filename)))
}
