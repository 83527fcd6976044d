/*  Copyright (c) 2012 Yan Ivnitskiy. All rights reserved.
 *
 *  Redistribution and use in source and binary forms, with or without
 *  modification, are permitted provided that the following conditions are
 *  met:
 *
 *     * Redistributions of source code must retain the above copyright
 *  notice, this list of conditions and the following disclaimer.
 *     * Redistributions in binary form must reproduce the above
 *  copyright notice, this list of conditions and the following disclaimer
 *  in the documentation and/or other materials provided with the
 *  distribution.
 *     * Neither the name of grace nor the names of its
 *  contributors may be used to endorse or promote products derived from
 *  this software without specific prior written permission.
 *
 *  THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
 *  "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
 *  LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
 *  A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
 *  OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
 *  SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
 *  LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
 *  DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
 *  THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
 *  (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
 *  OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
 */

//go:build linux

package watchdog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// parseMemoryRegion parses one /proc/<pid>/maps line into its start
// address and MemoryRegion, ignoring the dev/inode fields.
func parseMemoryRegion(mapping string) (uint64, MemoryRegion) {
	fields := strings.Fields(mapping)
	if len(fields) < 2 {
		return 0, MemoryRegion{}
	}

	addrs := strings.SplitN(fields[0], "-", 2)
	if len(addrs) != 2 {
		return 0, MemoryRegion{}
	}
	start, _ := strconv.ParseUint(addrs[0], 16, 64)
	end, _ := strconv.ParseUint(addrs[1], 16, 64)

	perms := fields[1]

	var offset uint64
	if len(fields) > 2 {
		offset, _ = strconv.ParseUint(fields[2], 16, 64)
	}

	file := ""
	if len(fields) > 5 {
		file = fields[5]
	}

	return start, MemoryRegion{
		Address:     start,
		Offset:      offset,
		File:        file,
		Size:        int(end - start),
		Permissions: perms,
	}
}

// getMemoryMap reads the full memory map of pid. Unlike the in-process
// locator (internal/locator), this runs against an external process, so
// it has no line-count bound to worry about evading its own address
// space — the guarded process's maps file is read once per refresh.
func getMemoryMap(pid int) (MemoryMap, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	memoryMap := make(MemoryMap)
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			addr, region := parseMemoryRegion(strings.TrimRight(line, "\n"))
			if region.Size > 0 {
				memoryMap[addr] = region
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return memoryMap, err
		}
	}

	return memoryMap, nil
}

// FindTextSection returns the address of the guarded binary's own
// executable mapping, the external analogue of internal/locator.Locate
// for a process other than the monitor's own.
func (t *Target) FindTextSection() (uint64, bool) {
	for _, region := range t.Memory {
		if region.File == t.Filename && strings.HasPrefix(region.Permissions, "r-x") {
			return region.Address, true
		}
	}
	return 0, false
}

// refreshMemory re-reads the guarded process's memory map. Call before
// FindTextSection if the process may have loaded new mappings (e.g. after
// exec or dlopen) since the target was created.
func (t *Target) refreshMemory() error {
	m, err := getMemoryMap(t.Pid)
	if err != nil {
		return err
	}
	t.Memory = m
	return nil
}
