/* SPDX-License-Identifier: GPL-3.0-or-later
 *
 * caspar-core
 * Copyright (C) 2026 caspar-core contributors
 *
 * This file is part of caspar-core.
 *
 * caspar-core is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * caspar-core is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with caspar-core.  If not, see <https://www.gnu.org/licenses/>.
 */
package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	BaseHelpSink
	begun  []string
	ended  int
	shorts []string
}

func (s *recordingSink) ShortDescription(text string) { s.shorts = append(s.shorts, text) }
func (s *recordingSink) beginItem(name string)         { s.begun = append(s.begun, name) }
func (s *recordingSink) endItem()                      { s.ended++ }

func TestHelpRepositoryHelpDescribesOnlyMatchingTags(t *testing.T) {
	repo := NewHelpRepository()
	repo.RegisterItem(TagSet("PRODUCER"), "PLAY", func(sink HelpSink, _ *HelpRepository) {
		sink.ShortDescription("plays a producer")
	})
	repo.RegisterItem(TagSet("CONSUMER"), "ADD", func(sink HelpSink, _ *HelpRepository) {
		sink.ShortDescription("adds a consumer")
	})

	sink := &recordingSink{}
	repo.Help(TagSet("PRODUCER"), sink)

	assert.Equal(t, []string{"PLAY"}, sink.begun)
	assert.Equal(t, 1, sink.ended)
	assert.Equal(t, []string{"plays a producer"}, sink.shorts)
}

func TestHelpRepositoryHelpWithNoTagsDescribesEverything(t *testing.T) {
	repo := NewHelpRepository()
	repo.RegisterItem(TagSet("PRODUCER"), "PLAY", func(sink HelpSink, _ *HelpRepository) {})
	repo.RegisterItem(TagSet("CONSUMER"), "ADD", func(sink HelpSink, _ *HelpRepository) {})

	sink := &recordingSink{}
	repo.Help(nil, sink)

	assert.ElementsMatch(t, []string{"PLAY", "ADD"}, sink.begun)
}

func TestHelpRepositoryHelpNamedIsCaseInsensitive(t *testing.T) {
	repo := NewHelpRepository()
	repo.RegisterItem(TagSet("PRODUCER"), "PLAY", func(sink HelpSink, _ *HelpRepository) {})

	sink := &recordingSink{}
	err := repo.HelpNamed(nil, "play", sink)

	require.NoError(t, err)
	assert.Equal(t, []string{"PLAY"}, sink.begun)
}

func TestHelpRepositoryHelpNamedReturnsErrorWhenNotFound(t *testing.T) {
	repo := NewHelpRepository()
	repo.RegisterItem(TagSet("PRODUCER"), "PLAY", func(sink HelpSink, _ *HelpRepository) {})

	sink := &recordingSink{}
	err := repo.HelpNamed(nil, "STOP", sink)

	assert.Error(t, err)
}

func TestHelpRepositoryHelpNamedRespectsTagFilterEvenWhenNameMatches(t *testing.T) {
	repo := NewHelpRepository()
	repo.RegisterItem(TagSet("PRODUCER"), "PLAY", func(sink HelpSink, _ *HelpRepository) {})

	sink := &recordingSink{}
	err := repo.HelpNamed(TagSet("CONSUMER"), "PLAY", sink)

	assert.Error(t, err)
	assert.Empty(t, sink.begun)
}

func TestBaseHelpSinkParaAndDefinitionsChainWithoutPanic(t *testing.T) {
	var sink BaseHelpSink
	para := sink.Para().Text("a").Code("b").Strong("c").See("d").URL("e", "f")
	require.NotNil(t, para)

	defs := sink.Definitions().Item("term", "description")
	require.NotNil(t, defs)
}

func TestDefaultRepositoriesAreSingletons(t *testing.T) {
	assert.Same(t, DefaultHelpRepository(), DefaultHelpRepository())
	assert.Same(t, DefaultAudioChannelLayoutRepository(), DefaultAudioChannelLayoutRepository())
	assert.Same(t, DefaultAudioMixConfigRepository(), DefaultAudioMixConfigRepository())
}
