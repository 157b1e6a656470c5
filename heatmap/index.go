/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package heatmap

import (
	"fmt"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"

	"github.com/ilhamster/traceviz/heatviz/category"
)

// IndexFilename is the name of the index document among per-field documents.
const IndexFilename = "index.html"

// The viewer shows the selected field's document in an iframe, with a link
// to open it on its own.
const index = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title><style>
body { font-family: sans-serif; }
iframe { width: 100%; height: 80vh; border: 0; display: none; }
</style></head><body>
<h1>{{.Title}}</h1>
<ul>
{{range .Fields}}<li><a href="{{.Filename}}">{{.DisplayName}}</a></li>
{{end}}</ul>
<select><option value="">-</option>{{range .Fields}}<option value="{{.Filename}}">{{.DisplayName}}</option>{{end}}</select>
<a id="open" target="_blank"></a>
<iframe id="viewer"></iframe>
<script>
document.getElementsByTagName('select')[0].onchange = function() {
  var page = this.value;
  var viewer = document.getElementById('viewer');
  var open = document.getElementById('open');
  if (page === '') {
    viewer.style.display = 'none';
    open.textContent = '';
    return;
  }
  viewer.src = page;
  viewer.style.display = 'block';
  open.textContent = 'Open in new window';
  open.href = page;
};
</script>
</body></html>
`

var indexTmpl = template.Must(template.New("index").Parse(index))

// Index returns an HTML document with the provided title, linking to the
// per-field documents of the provided categories and offering a viewer to
// browse them in place.
func Index(title string, cats []*category.Category) (safehtml.HTML, error) {
	for _, cat := range cats {
		if err := cat.Validate(); err != nil {
			return safehtml.HTML{}, err
		}
	}
	h, err := indexTmpl.ExecuteToHTML(struct {
		Title  string
		Fields []*category.Category
	}{title, cats})
	if err != nil {
		return safehtml.HTML{}, fmt.Errorf("failed to render index: %w", err)
	}
	return h, nil
}
