package feed

import "testing"

const sampleGviz = `/*O_o*/
google.visualization.Query.setResponse({"version":"0.6","status":"ok","table":{
"cols":[{"id":"A","label":"Deal Name","type":"string"},{"id":"B","label":"Associate","type":"string"},{"id":"C","label":"Date","type":"date"},{"id":"D","label":"Associate Error T/F","type":"string"}],
"rows":[
 {"c":[{"v":"Acme"},{"v":"Sam"},{"v":"Date(2024,0,1)","f":"1/1/2024"},{"v":"yes"}]},
 {"c":[{"v":null},{"v":null},{"v":null},{"v":null}]},
 {"c":[{"v":"Globex"},{"v":"Kim"},{"v":"Date(2024,0,2)","f":"1/2/2024"},{"v":"no"}]}
]}});`

func TestParseGviz(t *testing.T) {
	table, err := ParseGviz([]byte(sampleGviz))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(table.Header) != 4 || table.Header[1] != "Associate" {
		t.Fatalf("unexpected header: %v", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected all-null row skipped, got %d rows", len(table.Rows))
	}
	// The formatted value wins so dates keep their sheet rendering.
	if table.Rows[0][2] != "1/1/2024" {
		t.Fatalf("expected formatted date, got %q", table.Rows[0][2])
	}
}

func TestParseGviz_ErrorStatus(t *testing.T) {
	payload := `google.visualization.Query.setResponse({"status":"error","errors":[{"reason":"access_denied","detailed_message":"No access"}]});`
	if _, err := ParseGviz([]byte(payload)); err == nil {
		t.Fatal("expected error for error status")
	}
}

func TestParseGviz_BareJSON(t *testing.T) {
	payload := `{"status":"ok","table":{"cols":[{"label":"Associate"},{"label":"Date"}],"rows":[]}}`
	table, err := ParseGviz([]byte(payload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(table.Header) != 2 {
		t.Fatalf("unexpected header: %v", table.Header)
	}
}

func TestParseGviz_Garbage(t *testing.T) {
	if _, err := ParseGviz([]byte("<html>nope</html>")); err == nil {
		t.Fatal("expected error for non-gviz body")
	}
}
