package connectors

import (
	"github.com/opsgraph/opsgraph/pkg/core"
)

// Kubernetes parses typed workload manifests (kind/metadata/spec documents).
// Deployments and Services produce nodes; other kinds are recognized but
// yield nothing, which keeps multi-kind streams flowing.
type Kubernetes struct{}

// Name implements core.Connector.
func (k *Kubernetes) Name() string { return "kubernetes" }

// CanHandle matches documents carrying both kind and metadata.
func (k *Kubernetes) CanHandle(_ string, doc map[string]any) bool {
	if doc == nil {
		return false
	}
	_, hasKind := doc["kind"]
	_, hasMeta := doc["metadata"]
	return hasKind && hasMeta
}

// Parse builds one workload node per Deployment or Service manifest.
func (k *Kubernetes) Parse(doc map[string]any) ([]core.Node, []core.Edge, error) {
	kind := stringValue(doc, "kind")
	metadata := mapValue(doc, "metadata")
	spec := mapValue(doc, "spec")

	name := stringValue(metadata, "name")
	if kind == "" || name == "" {
		return nil, nil, nil
	}

	namespace := stringValue(metadata, "namespace")
	if namespace == "" {
		namespace = "default"
	}

	switch kind {
	case "Deployment":
		return []core.Node{k.buildDeploymentNode(name, namespace, metadata, spec)}, nil, nil
	case "Service":
		return []core.Node{k.buildServiceNode(name, namespace, spec)}, nil, nil
	}

	return nil, nil, nil
}

func (k *Kubernetes) buildDeploymentNode(name, namespace string, metadata, spec map[string]any) core.Node {
	podSpec := mapValue(mapValue(spec, "template"), "spec")

	containers := make([]any, 0)
	for _, raw := range listValue(podSpec, "containers") {
		container, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		ports := make([]any, 0)
		for _, p := range listValue(container, "ports") {
			if port, ok := p.(map[string]any); ok {
				ports = append(ports, port["containerPort"])
			}
		}

		containers = append(containers, map[string]any{
			"name":  container["name"],
			"image": container["image"],
			"ports": ports,
		})
	}

	meta := core.Metadata{
		"namespace":  namespace,
		"containers": containers,
	}
	if spec != nil {
		if replicas, ok := spec["replicas"]; ok {
			meta["replicas"] = replicas
		}
	}
	if labels := mapValue(metadata, "labels"); labels != nil {
		meta["labels"] = labels
	}

	return core.NewNode(core.NodeTypeDeployment, name, meta, "k8s.yaml")
}

func (k *Kubernetes) buildServiceNode(name, namespace string, spec map[string]any) core.Node {
	ports := make([]any, 0)
	for _, raw := range listValue(spec, "ports") {
		port, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		ports = append(ports, map[string]any{
			"port":       port["port"],
			"targetPort": port["targetPort"],
			"protocol":   port["protocol"],
		})
	}

	serviceType := stringValue(spec, "type")
	if serviceType == "" {
		serviceType = "ClusterIP"
	}

	meta := core.Metadata{
		"namespace":    namespace,
		"service_type": serviceType,
		"ports":        ports,
	}
	if selector := mapValue(spec, "selector"); selector != nil {
		meta["selector"] = selector
	}

	return core.NewNode(core.NodeTypeK8sService, name, meta, "k8s.yaml")
}
