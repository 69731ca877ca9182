package naming

import "fmt"

func Network(group string) string {
	return group
}

func Firewall(group string) string {
	return group
}

func SSHKey(keyname string) string {
	return keyname
}

// Server names the index-th (0-based) node of a deployment.
func Server(keyname string, index int) string {
	return fmt.Sprintf("%s-node-%d", keyname, index)
}
