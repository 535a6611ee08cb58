package console

import (
	"bytes"
	"html/template"
	"strconv"
	"time"
)

const createdLayout = "02.01.2006, 15:04:05"

var rowTemplates = template.Must(template.New("rows").Funcs(template.FuncMap{
	"release": releaseCell,
}).Parse(`
{{- define "collection" -}}
<tr data-id="{{.ID}}"><td class="col-id">{{.ID}}</td><td class="col-title">{{.Title}}</td><td class="col-release">{{release .ReleaseYear .ReleaseNumber}}</td><td class="col-actions"><button class="btn btn-ghost" data-edit="{{.ID}}">Редактировать</button> <button class="btn btn-ghost" data-del="{{.ID}}">Удалить</button></td></tr>
{{- end -}}
{{- define "article" -}}
<tr data-id="{{.ID}}"><td class="col-id">{{.ID}}</td><td class="col-author">{{.Author}}</td><td class="col-title">{{.Title}}</td><td class="col-email">{{.Email}}</td><td class="col-created">{{.Created}}</td><td class="col-actions"><a class="btn btn-ghost" href="{{.DownloadURL}}">Скачать</a> <button class="btn btn-ghost" data-del="{{.ID}}">Удалить</button></td></tr>
{{- end -}}
`))

// releaseCell renders "2024 / № 3", "2024" or "".
func releaseCell(year, number *int) string {
	var s string
	if year != nil {
		s = strconv.Itoa(*year)
	}
	if number != nil && *number != 0 {
		s += " / № " + strconv.Itoa(*number)
	}
	return s
}

type articleRowData struct {
	ArticleRecord
	Created     string
	DownloadURL string
}

func renderCollectionRow(c CollectionRecord) (template.HTML, error) {
	var buf bytes.Buffer
	if err := rowTemplates.ExecuteTemplate(&buf, "collection", c); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func renderArticleRow(a ArticleRecord, downloadURL string, loc *time.Location) (template.HTML, error) {
	data := articleRowData{ArticleRecord: a, DownloadURL: downloadURL}
	if a.CreatedAt != nil {
		data.Created = a.CreatedAt.In(loc).Format(createdLayout)
	}

	var buf bytes.Buffer
	if err := rowTemplates.ExecuteTemplate(&buf, "article", data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
