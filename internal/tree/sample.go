// Copyright 2024 PatternFS Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tree

// SampleFileSystem builds the demo tree used by the CLI's --sample flag:
//
//	root/
//	  documents/  README.md, config.json, work/, personal/
//	  applications/  src/, test/
func SampleFileSystem() *Container {
	root := mustContainer("root")

	documents := mustContainer("documents")
	mustAdd(root, documents)
	mustAdd(documents, mustLeaf("README.md", 1024, "md", "# Project Documentation\nThis is a sample project."))
	mustAdd(documents, mustLeaf("config.json", 512, "json", `{"version": "1.0", "debug": true}`))

	work := mustContainer("work")
	mustAdd(documents, work)
	mustAdd(work, mustLeaf("annual_report.pdf", 2048576, "pdf", "Annual financial report for 2024"))
	mustAdd(work, mustLeaf("presentation.pptx", 1048576, "pptx", "Quarterly presentation slides"))

	personal := mustContainer("personal")
	mustAdd(documents, personal)
	mustAdd(personal, mustLeaf("vacation_photo.jpg", 3145728, "jpg", "Photo from summer vacation"))
	mustAdd(personal, mustLeaf("notes.txt", 256, "txt", "Personal notes and reminders"))

	applications := mustContainer("applications")
	mustAdd(root, applications)

	src := mustContainer("src")
	mustAdd(applications, src)
	mustAdd(src, mustLeaf("main.go", 2048, "go", "package main\n\nfunc main() {\n\tprintln(\"Hello World!\")\n}\n"))
	mustAdd(src, mustLeaf("utils.go", 1536, "go", "package main\n\nfunc helper() {}\n"))

	test := mustContainer("test")
	mustAdd(applications, test)
	mustAdd(test, mustLeaf("main_test.go", 1024, "go", "package main\n\nimport \"testing\"\n\nfunc TestMain(t *testing.T) {}\n"))

	return root
}

// The sample layout is static; a failure here is a bug in this file.

func mustContainer(name string) *Container {
	c, err := NewContainer(name, DefaultDirPermissions)
	if err != nil {
		panic(err)
	}
	return c
}

func mustLeaf(name string, size int64, ext, content string) *Leaf {
	l, err := NewLeaf(name, size, DefaultFilePermissions, ext, content)
	if err != nil {
		panic(err)
	}
	return l
}

func mustAdd(parent *Container, child Node) {
	if err := parent.Add(child); err != nil {
		panic(err)
	}
}
