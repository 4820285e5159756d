package testutil

// Test image constants
const (
	// TestImageRepository is the image repository used across tests
	TestImageRepository = "registry.example.com/acme/hospital-app"

	// TestRegistry is the registry host of TestImageRepository
	TestRegistry = "registry.example.com"

	// TestBuildNumber is a fixed build number for deterministic tags
	TestBuildNumber = "42"
)

// SamplePipelineYAML returns a valid pipeline YAML for testing
func SamplePipelineYAML() string {
	return `apiVersion: deploy-man/v1
kind: Pipeline
metadata:
  name: test-pipeline
  description: Test pipeline for unit tests
spec:
  image:
    repository: registry.example.com/acme/hospital-app
  publish:
    credentialId: registry-creds
  deploy:
    namespace: staging
    release: hospital-app
    chartPath: charts/hospital-app
`
}

// SamplePipelineYAMLWithAnalysis returns a pipeline YAML with static
// analysis and quality gate configuration
func SamplePipelineYAMLWithAnalysis() string {
	return `apiVersion: deploy-man/v1
kind: Pipeline
metadata:
  name: analysis-pipeline
spec:
  analysis:
    server: https://sonar.example.com
    projectKey: hospital-app
    credentialId: sonar-token
    gate:
      timeoutSeconds: 120
      abortOnFailure: true
  image:
    repository: registry.example.com/acme/hospital-app
    dockerfile: Dockerfile
  scan:
    severity: CRITICAL
    failOnVulnerability: true
  publish:
    registry: registry.example.com
    credentialId: registry-creds
  deploy:
    namespace: production
    release: hospital-app
    chartPath: charts/hospital-app
    waitTimeoutSeconds: 300
  archive:
    patterns:
      - target/*.jar
`
}

// SamplePipelineYAMLInvalid returns a pipeline YAML missing required fields
func SamplePipelineYAMLInvalid() string {
	return `apiVersion: deploy-man/v1
kind: Pipeline
metadata:
  name: broken-pipeline
spec:
  image:
    repository: registry.example.com/acme/hospital-app
`
}
