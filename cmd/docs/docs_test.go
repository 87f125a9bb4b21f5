package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type swaggerDoc struct {
	Paths map[string]map[string]struct {
		Parameters []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"parameters"`
		Responses map[string]struct {
			Description string `json:"description"`
		} `json:"responses"`
	} `json:"paths"`
}

func readDoc(t *testing.T) swaggerDoc {
	t.Helper()
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)
	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestCreateOperationForbiddenMeansUnapprovedAccount(t *testing.T) {
	doc := readDoc(t)
	create := doc.Paths["/api/v1/operations"]["post"]
	assert.Equal(t, "Account not approved", create.Responses["403"].Description)
}

func TestHistorySearchQueryDescribesMatchedFields(t *testing.T) {
	doc := readDoc(t)
	search := doc.Paths["/api/v1/history/search"]["get"]
	var q string
	for _, p := range search.Parameters {
		if p.Name == "q" {
			q = p.Description
		}
	}
	assert.Equal(t, "Matches reference, payer, beneficiary, motive, purpose or note", q)
	assert.NotContains(t, q, "action")
}
