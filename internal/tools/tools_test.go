package tools_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mwiater/pagemcp/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Args(t *testing.T) {
	args := tools.Args{
		"s":       "text",
		"n":       float64(42),
		"num":     json.Number("7"),
		"ns":      " 12 ",
		"b":       true,
		"null":    nil,
		"obj":     map[string]any{"data": []any{}},
		"objstr":  `{"data":[{"message":"bad"}]}`,
		"list":    []any{"a", "b"},
		"csv":     "post_clicks, post_impressions,,",
		"strings": []string{"x"},
	}

	assert.Equal(t, "text", args.String("s"))
	assert.Equal(t, "42", args.String("n"))
	assert.Equal(t, "true", args.String("b"))
	assert.Equal(t, "", args.String("missing"))
	assert.Equal(t, "", args.String("null"))
	assert.Equal(t, "dflt", args.StringOr("missing", "dflt"))
	assert.Equal(t, "", args.StringOr("obj", ""))

	assert.Equal(t, int64(42), args.Int("n"))
	assert.Equal(t, int64(7), args.Int("num"))
	assert.Equal(t, int64(12), args.Int("ns"))
	assert.Zero(t, args.Int("s"))
	assert.Zero(t, args.Int("missing"))

	assert.Equal(t, map[string]any{"data": []any{}}, args.Object("obj"))
	require.NotNil(t, args.Object("objstr"))
	assert.Len(t, args.Object("objstr")["data"], 1)
	assert.Nil(t, args.Object("s"))
	assert.Nil(t, args.Object("missing"))

	assert.Equal(t, []any{"a", "b"}, args.List("list"))
	assert.Equal(t, []any{"post_clicks", "post_impressions"}, args.List("csv"))
	assert.Equal(t, []any{"x"}, args.List("strings"))
	assert.Nil(t, args.List("n"))

	assert.True(t, args.Has("s"))
	assert.False(t, args.Has("null"))
}

func Test_Definition_Describe(t *testing.T) {
	def := tools.Definition{
		Name:        "post_image_to_facebook",
		Description: "Post an image with a caption to the Facebook page",
		Parameters: []tools.Parameter{
			{Name: "image_url", Kind: tools.KindString, Required: true, Description: "URL of the image to post"},
			{Name: "caption", Kind: tools.KindString, Description: "Caption for the image"},
		},
	}

	want := tools.Descriptor{
		Name:        "post_image_to_facebook",
		Description: "Post an image with a caption to the Facebook page",
		Parameters: map[string]tools.ParameterSchema{
			"image_url": {Type: tools.KindString, Required: true, Description: "URL of the image to post"},
			"caption":   {Type: tools.KindString, Description: "Caption for the image"},
		},
	}
	if diff := cmp.Diff(want, def.Describe()); diff != "" {
		t.Fatalf("Describe() mismatch (-want +got):\n%s", diff)
	}

	raw, err := json.Marshal(def.Describe())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "post_image_to_facebook",
		"description": "Post an image with a caption to the Facebook page",
		"parameters": {
			"image_url": {"type": "string", "required": true, "description": "URL of the image to post"},
			"caption": {"type": "string", "required": false, "description": "Caption for the image"}
		}
	}`, string(raw))

	assert.Equal(t, []string{"image_url"}, def.RequiredNames())

	schema := def.InputSchema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"image_url"}, schema["required"])
	assert.Len(t, schema["properties"], 2)

	empty := tools.Definition{Name: "get_page_posts"}
	_, hasRequired := empty.InputSchema()["required"]
	assert.False(t, hasRequired)
}
