// Package labels builds the label sets deployctl attaches to cloud resources.
//
// Every resource created for a deployment carries its group and keyname so
// the deployment can later be described or torn down by label selector.
package labels
