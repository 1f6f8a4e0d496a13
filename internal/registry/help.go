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

// Package registry implements the C9 registries: the help system
// (ParagraphBuilder/DefinitionListBuilder/HelpSink/HelpRepository) and the
// audio channel-layout/mix-config repositories preloaded from
// configuration. Ground-matched on
// original_source/core/help/help_repository.{h,cpp}, help_sink.h, and
// original_source/core/frame/audio_channel_layout.{h,cpp}.
package registry

import (
	"strings"

	"github.com/e1z0/caspar-core/internal/corerr"
)

// ParagraphBuilder accumulates one help paragraph's runs of text, ground-
// matched on paragraph_builder; every method returns the builder itself for
// chaining, the Go counterpart of shared_from_this()-returning virtuals.
type ParagraphBuilder interface {
	Text(text string) ParagraphBuilder
	Code(text string) ParagraphBuilder
	Strong(text string) ParagraphBuilder
	See(item string) ParagraphBuilder
	URL(url, name string) ParagraphBuilder
}

// DefinitionListBuilder accumulates term/description pairs, ground-matched
// on definition_list_builder.
type DefinitionListBuilder interface {
	Item(term, description string) DefinitionListBuilder
}

// HelpSink receives one help item's description. beginItem/endItem are
// unexported so only types declared in this package (or embedding
// BaseHelpSink, which promotes them) can satisfy HelpSink — the Go
// counterpart of help_sink's `friend help_repository`-gated private
// begin_item/end_item pair.
type HelpSink interface {
	ShortDescription(text string)
	Syntax(text string)
	Para() ParagraphBuilder
	Definitions() DefinitionListBuilder
	Example(code, caption string)

	beginItem(name string)
	endItem()
}

// BaseHelpSink supplies no-op defaults for every HelpSink method, the Go
// counterpart of help_sink's empty virtual bodies — embed it and override
// only the methods a concrete sink cares about.
type BaseHelpSink struct{}

func (BaseHelpSink) ShortDescription(string)            {}
func (BaseHelpSink) Syntax(string)                      {}
func (BaseHelpSink) Para() ParagraphBuilder             { return noopParagraph{} }
func (BaseHelpSink) Definitions() DefinitionListBuilder { return noopDefinitionList{} }
func (BaseHelpSink) Example(string, string)             {}
func (BaseHelpSink) beginItem(string)                   {}
func (BaseHelpSink) endItem()                           {}

type noopParagraph struct{}

func (n noopParagraph) Text(string) ParagraphBuilder        { return n }
func (n noopParagraph) Code(string) ParagraphBuilder        { return n }
func (n noopParagraph) Strong(string) ParagraphBuilder      { return n }
func (n noopParagraph) See(string) ParagraphBuilder         { return n }
func (n noopParagraph) URL(string, string) ParagraphBuilder { return n }

type noopDefinitionList struct{}

func (n noopDefinitionList) Item(string, string) DefinitionListBuilder { return n }

var (
	_ ParagraphBuilder      = noopParagraph{}
	_ DefinitionListBuilder = noopDefinitionList{}
	_ HelpSink              = BaseHelpSink{}
)

// HelpItemDescriber describes one help item onto sink, given the repository
// it was registered in (so a describer can recurse into related items via
// See and a follow-up lookup) — ground-matched on help_item_describer.
type HelpItemDescriber func(sink HelpSink, repo *HelpRepository)

type helpItem struct {
	name     string
	tags     map[string]struct{}
	describe HelpItemDescriber
}

// HelpRepository is the process-wide catalogue of CLI command help
// entries, ground-matched on help_repository.
type HelpRepository struct {
	items []helpItem
}

// NewHelpRepository builds an empty help repository.
func NewHelpRepository() *HelpRepository { return &HelpRepository{} }

var defaultHelpRepository = NewHelpRepository()

// DefaultHelpRepository returns the process-wide singleton. help_repository
// itself has no get_default() in the original (command modules are handed
// a repository reference at construction time instead); this singleton is
// added for symmetry with AudioChannelLayoutRepository/
// AudioMixConfigRepository, which do have one, and for callers (command
// registration at startup) that have no natural place to thread a
// repository reference through.
func DefaultHelpRepository() *HelpRepository { return defaultHelpRepository }

// tagsInclude reports whether every tag in query is present in itemTags —
// ground-matched on std::includes(item.second, tags): the item's own tag
// set must be a superset of the requested query tags.
func tagsInclude(itemTags, query map[string]struct{}) bool {
	for t := range query {
		if _, ok := itemTags[t]; !ok {
			return false
		}
	}
	return true
}

// RegisterItem adds one help item. Not safe for concurrent use, matching
// help_repository::register_item's own "// Not thread safe" comment —
// registration happens once at startup before any concurrent Help() calls.
func (r *HelpRepository) RegisterItem(tags map[string]struct{}, name string, describe HelpItemDescriber) {
	r.items = append(r.items, helpItem{name: name, tags: tags, describe: describe})
}

func (r *HelpRepository) describe(it helpItem, sink HelpSink) {
	sink.beginItem(it.name)
	it.describe(sink, r)
	sink.endItem()
}

// Help describes every registered item whose tag set is a superset of tags,
// ground-matched on help_repository::help(tags, sink).
func (r *HelpRepository) Help(tags map[string]struct{}, sink HelpSink) {
	for _, it := range r.items {
		if tagsInclude(it.tags, tags) {
			r.describe(it, sink)
		}
	}
}

// HelpNamed describes every registered item matching name (case-
// insensitive) whose tag set is a superset of tags, returning an error if
// none match — ground-matched on help_repository::help(tags, name, sink),
// which throws file_not_found for an unknown name.
func (r *HelpRepository) HelpNamed(tags map[string]struct{}, name string, sink HelpSink) error {
	found := false
	for _, it := range r.items {
		if strings.EqualFold(it.name, name) && tagsInclude(it.tags, tags) {
			found = true
			r.describe(it, sink)
		}
	}
	if !found {
		return corerr.NewUserError(0, "could not find help item %q", name)
	}
	return nil
}

// TagSet is a small helper building the map[string]struct{} RegisterItem/
// Help/HelpNamed expect from a plain list of tag strings.
func TagSet(tags ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
