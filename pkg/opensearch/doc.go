// Package opensearch creates github.com/opensearch-project/opensearch-go/v2 clients.
// The service writes its security audit trail to an OpenSearch index when configured.
package opensearch
