// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import "fmt"

// RegisterCmd is the on-chain agent registry stub named in spec §1's
// out-of-scope list ("on-chain register"). Wallet/blockchain interaction is
// an external collaborator this core only names, never implements.
type RegisterCmd struct {
	Registry string `help:"Registry endpoint or chain identifier." placeholder:"ENDPOINT"`
}

func (c *RegisterCmd) Run(cli *CLI) error {
	return fmt.Errorf("agentcore register: on-chain registration is not implemented by this core; wire an external registrar against %s", cli.Config)
}
